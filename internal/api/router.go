package api

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/energycompany/energy-registry/docs"
	"github.com/energycompany/energy-registry/internal/api/handler"
	"github.com/energycompany/energy-registry/internal/api/middleware"
	"github.com/energycompany/energy-registry/internal/core/domain"
	"github.com/energycompany/energy-registry/internal/core/ports"
)

// Dependencies are the services and settings the application routes need.
type Dependencies struct {
	Objects       ports.EnergyObjectService
	Auth          ports.AuthService
	Users         ports.UserService
	Renderer      echo.Renderer
	FlashSecret   string
	SecureCookies bool
	Log           zerolog.Logger
}

// NewRouter registers the application routes on e.
func NewRouter(e *echo.Echo, deps Dependencies) {
	e.Renderer = deps.Renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Dependencies ---
	flash := handler.NewFlasher(deps.FlashSecret, deps.SecureCookies)
	pageHandler := handler.NewPageHandler(deps.Users, flash, deps.Log)
	authHandler := handler.NewAuthHandler(deps.Auth, flash, deps.SecureCookies, deps.Log)
	objectHandler := handler.NewEnergyObjectHandler(deps.Objects, flash)
	adminHandler := handler.NewAdminHandler(deps.Users, flash)

	identify := middleware.Identify(deps.Auth)
	auth := middleware.Auth(deps.Auth)

	// --- Public pages (viewer shown when signed in) ---
	e.GET("/", pageHandler.Home, identify)
	e.GET("/about", pageHandler.About, identify)
	e.GET("/access-denied", pageHandler.AccessDenied, identify)
	e.GET("/login", authHandler.LoginForm, identify)
	e.POST("/login", authHandler.Login, identify)
	e.GET("/register", authHandler.RegisterForm, identify)
	e.POST("/register", authHandler.Register, identify)
	e.GET("/logout", authHandler.Logout, identify)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Energy objects ---
	objects := e.Group("/energy-objects", auth, middleware.Require(domain.CapViewObjects))

	canEdit := middleware.Require(domain.CapEditObjects)
	objects.GET("/create", objectHandler.CreateForm, canEdit)
	objects.POST("/create", objectHandler.Create, canEdit)
	objects.GET("/edit/:id", objectHandler.EditForm, canEdit)
	objects.POST("/edit/:id", objectHandler.Update, canEdit)
	objects.POST("/update/:id", objectHandler.Update, canEdit)
	objects.GET("/delete/:id", objectHandler.Delete, canEdit)

	objects.GET("/statistics", objectHandler.Statistics, middleware.Require(domain.CapViewStatistics))
	objects.GET("", objectHandler.List)
	objects.GET("/all", objectHandler.All)
	objects.GET("/:id", objectHandler.Detail)

	// --- Profile ---
	profile := e.Group("/profile", auth)
	profile.GET("", pageHandler.Profile)
	profile.POST("/password", pageHandler.ChangePassword)

	// --- User administration ---
	admin := e.Group("/admin/users", auth, middleware.Require(domain.CapManageUsers))
	admin.GET("", adminHandler.Users)
	admin.GET("/edit/:id", adminHandler.EditUser)
	admin.POST("/update-roles/:id", adminHandler.UpdateRoles)
	admin.GET("/delete/:id", adminHandler.DeleteUser)
}
