package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/energycompany/energy-registry/internal/core/domain"
	"github.com/energycompany/energy-registry/internal/core/ports"
)

// SeedPasswords holds the demo account passwords.
type SeedPasswords struct {
	Admin     string
	Moderator string
	User      string
}

// Bootstrap seeds demo accounts and sample energy objects. Every step is gated
// by an existence check, so running it on every start is safe.
type Bootstrap struct {
	objects   ports.EnergyObjectRepository
	users     ports.UserRepository
	passwords SeedPasswords
	logger    zerolog.Logger
}

func NewBootstrap(objects ports.EnergyObjectRepository, users ports.UserRepository, passwords SeedPasswords, logger zerolog.Logger) *Bootstrap {
	return &Bootstrap{objects: objects, users: users, passwords: passwords, logger: logger}
}

func (b *Bootstrap) Run(ctx context.Context) error {
	if err := b.seedUsers(ctx); err != nil {
		return err
	}
	return b.seedObjects(ctx)
}

func (b *Bootstrap) seedUsers(ctx context.Context) error {
	accounts := []struct {
		username string
		email    string
		password string
		roles    domain.RoleSet
	}{
		{"admin", "admin@energy.local", b.passwords.Admin, domain.NewRoleSet(domain.RoleAdmin, domain.RoleModerator, domain.RoleUser)},
		{"moderator", "moderator@energy.local", b.passwords.Moderator, domain.NewRoleSet(domain.RoleModerator, domain.RoleUser)},
		{"user", "user@energy.local", b.passwords.User, domain.NewRoleSet(domain.RoleUser)},
	}

	for _, a := range accounts {
		_, err := b.users.FindByUsername(ctx, a.username)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("seed users: %w", err)
		}

		hash, err := hashPassword(a.password)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		u := &domain.User{
			Username:     a.username,
			Email:        a.email,
			PasswordHash: hash,
			Roles:        a.roles,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := b.users.Create(ctx, u); err != nil {
			if errors.Is(err, domain.ErrUserExists) {
				continue
			}
			return fmt.Errorf("seed users: %w", err)
		}
		b.logger.Info().Str("username", a.username).Strs("roles", a.roles.Strings()).Msg("seeded demo account")
	}
	return nil
}

func (b *Bootstrap) seedObjects(ctx context.Context) error {
	count, err := b.objects.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed energy objects: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, o := range sampleObjects() {
		if err := b.objects.Create(ctx, o); err != nil {
			return fmt.Errorf("seed energy objects: %w", err)
		}
	}
	b.logger.Info().Int("count", len(sampleObjects())).Msg("seeded sample energy objects")
	return nil
}

func sampleObjects() []*domain.EnergyObject {
	date := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	return []*domain.EnergyObject{
		{
			Name: "Ленинградская АЭС", Type: "АЭС", Location: "Ленинградская область",
			Power: 4200, CommissioningYear: 1973, Efficiency: 38.5, Active: true,
			LastMaintenanceDate: date(2023, time.October, 15),
			Description:         "Крупнейшая атомная электростанция в Северо-Западном регионе",
		},
		{
			Name: "Саратовская ГЭС", Type: "ГЭС", Location: "Саратовская область",
			Power: 1360, CommissioningYear: 1967, Efficiency: 85.0, Active: true,
			LastMaintenanceDate: date(2023, time.August, 20),
			Description:         "Одна из крупнейших гидроэлектростанций на Волге",
		},
		{
			Name: "Калининградская ТЭЦ-2", Type: "ТЭЦ", Location: "Калининград",
			Power: 450, CommissioningYear: 2005, Efficiency: 45.0, Active: true,
			LastMaintenanceDate: date(2023, time.September, 10),
			Description:         "Теплоэлектроцентраль в Калининграде",
		},
		{
			Name: "Волгоградская ТЭЦ-3", Type: "ТЭЦ", Location: "Волгоград",
			Power: 985, CommissioningYear: 1985, Efficiency: 42.0, Active: true,
			LastMaintenanceDate: date(2023, time.July, 5),
		},
		{
			Name: "Солнечная станция 'Крымская'", Type: "СЭС", Location: "Крым",
			Power: 110, CommissioningYear: 2020, Efficiency: 22.5, Active: true,
			LastMaintenanceDate: date(2023, time.June, 30),
			Description:         "Солнечная электростанция в Крыму",
		},
		{
			Name: "Ветропарк 'Адыгейский'", Type: "ВЭС", Location: "Адыгея",
			Power: 150, CommissioningYear: 2021, Efficiency: 35.0, Active: false,
			LastMaintenanceDate: date(2023, time.May, 15),
			Description:         "Ветровая электростанция на плановом ремонте",
		},
	}
}
