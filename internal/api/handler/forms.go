package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/energycompany/energy-registry/internal/core/domain"
)

const dateLayout = "2006-01-02"

// objectForm is the create/edit input. Numeric fields stay strings so that a
// malformed value is reported per field instead of failing the bind.
type objectForm struct {
	Name                string `form:"name" validate:"required,max=100"`
	Type                string `form:"type" validate:"required,max=50"`
	Location            string `form:"location" validate:"required,max=100"`
	Power               string `form:"power" validate:"required,numeric"`
	CommissioningYear   string `form:"commissioning_year" validate:"required,number"`
	Efficiency          string `form:"efficiency" validate:"required,numeric"`
	Active              string `form:"active" validate:"omitempty,oneof=true false on"`
	LastMaintenanceDate string `form:"last_maintenance_date" validate:"omitempty,datetime=2006-01-02"`
	Description         string `form:"description" validate:"max=500"`
}

// normalize trims input and accepts a decimal comma.
func (f *objectForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Type = strings.TrimSpace(f.Type)
	f.Location = strings.TrimSpace(f.Location)
	f.Description = strings.TrimSpace(f.Description)
	f.Power = strings.ReplaceAll(strings.TrimSpace(f.Power), ",", ".")
	f.Efficiency = strings.ReplaceAll(strings.TrimSpace(f.Efficiency), ",", ".")
	f.CommissioningYear = strings.TrimSpace(f.CommissioningYear)
	f.LastMaintenanceDate = strings.TrimSpace(f.LastMaintenanceDate)
}

// toDomain converts a form that passed struct validation. An omitted active
// flag means active.
func (f *objectForm) toDomain() (*domain.EnergyObject, error) {
	ve := &domain.ValidationError{}

	power, err := strconv.ParseFloat(f.Power, 64)
	if err != nil {
		ve.Add("power", "must be a number")
	}
	year, err := strconv.Atoi(f.CommissioningYear)
	if err != nil {
		ve.Add("commissioning_year", "must be a whole number")
	}
	efficiency, err := strconv.ParseFloat(f.Efficiency, 64)
	if err != nil {
		ve.Add("efficiency", "must be a number")
	}

	var maintenance *time.Time
	if f.LastMaintenanceDate != "" {
		d, err := time.Parse(dateLayout, f.LastMaintenanceDate)
		if err != nil {
			ve.Add("last_maintenance_date", "must be a date in 2006-01-02 format")
		} else {
			maintenance = &d
		}
	}

	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	return &domain.EnergyObject{
		Name:                f.Name,
		Type:                f.Type,
		Location:            f.Location,
		Power:               power,
		CommissioningYear:   year,
		Efficiency:          efficiency,
		Active:              f.Active != "false",
		LastMaintenanceDate: maintenance,
		Description:         f.Description,
	}, nil
}

func objectFormFrom(o *domain.EnergyObject) objectForm {
	f := objectForm{
		Name:              o.Name,
		Type:              o.Type,
		Location:          o.Location,
		Power:             strconv.FormatFloat(o.Power, 'f', -1, 64),
		CommissioningYear: strconv.Itoa(o.CommissioningYear),
		Efficiency:        strconv.FormatFloat(o.Efficiency, 'f', -1, 64),
		Active:            strconv.FormatBool(o.Active),
		Description:       o.Description,
	}
	if o.LastMaintenanceDate != nil {
		f.LastMaintenanceDate = o.LastMaintenanceDate.Format(dateLayout)
	}
	return f
}

type registerForm struct {
	Username        string `form:"username"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

func (f registerForm) toDomain() domain.Registration {
	return domain.Registration{
		Username:        f.Username,
		Email:           f.Email,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
	}
}

type loginForm struct {
	Identifier string `form:"username"`
	Password   string `form:"password"`
}

type passwordForm struct {
	CurrentPassword string `form:"current_password" validate:"required"`
	NewPassword     string `form:"new_password" validate:"required"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type rolesForm struct {
	Roles []string `form:"roles"`
}
