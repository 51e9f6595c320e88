package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/energycompany/energy-registry/internal/core/domain"
	"github.com/energycompany/energy-registry/internal/infrastructure/db/memory"
)

func newUserFixture(t *testing.T) (*UserService, *AuthService, *domain.User) {
	t.Helper()
	users := memory.NewUserRepository()
	tokens := memory.NewTokenStore()
	auth := NewAuthService(users, tokens, "secret", time.Hour, zerolog.Nop())
	svc := NewUserService(users, tokens, time.Hour, zerolog.Nop())

	u, err := auth.Register(context.Background(), registration("alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return svc, auth, u
}

func TestUserService_ReplaceRoles(t *testing.T) {
	svc, auth, u := newUserFixture(t)
	ctx := context.Background()

	session, _, err := auth.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	updated, err := svc.ReplaceRoles(ctx, u.ID, domain.NewRoleSet(domain.RoleModerator))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Roles.Has(domain.RoleModerator) || updated.Roles.Has(domain.RoleUser) {
		t.Fatalf("expected exactly MODERATOR, got %v", updated.Roles.Strings())
	}

	stored, _ := svc.Get(ctx, u.ID)
	if len(stored.Roles) != 1 || !stored.Roles.Has(domain.RoleModerator) {
		t.Fatalf("roles not persisted: %v", stored.Roles.Strings())
	}

	if _, err := auth.Authenticate(ctx, session.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected sessions issued before the change to be revoked, got %v", err)
	}
}

func TestUserService_ReplaceRoles_LoginInSameSecond(t *testing.T) {
	svc, auth, u := newUserFixture(t)
	ctx := context.Background()

	changedAt := time.Unix(1_700_000_000, 0).Add(100 * time.Millisecond)
	svc.now = func() time.Time { return changedAt }

	auth.now = func() time.Time { return changedAt.Add(-50 * time.Millisecond) }
	before, _, err := auth.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.ReplaceRoles(ctx, u.ID, domain.NewRoleSet(domain.RoleModerator)); err != nil {
		t.Fatalf("replace roles: %v", err)
	}

	auth.now = func() time.Time { return changedAt.Add(200 * time.Millisecond) }
	after, _, err := auth.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := auth.Authenticate(ctx, after.Token)
	if err != nil {
		t.Fatalf("expected fresh session to be accepted, got %v", err)
	}
	if !claims.Roles.Has(domain.RoleModerator) {
		t.Fatalf("expected new roles in the fresh session, got %v", claims.Roles.Strings())
	}
	if _, err := auth.Authenticate(ctx, before.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected session from earlier in the same second to be revoked, got %v", err)
	}
}

func TestUserService_ReplaceRoles_EmptySet(t *testing.T) {
	svc, _, u := newUserFixture(t)

	updated, err := svc.ReplaceRoles(context.Background(), u.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.Roles) != 0 {
		t.Fatalf("expected no roles, got %v", updated.Roles.Strings())
	}
}

func TestUserService_ReplaceRoles_UnknownUser(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	if _, err := svc.ReplaceRoles(context.Background(), 999, domain.NewRoleSet(domain.RoleAdmin)); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_ReplaceRoles_RevocationFailureIsNotFatal(t *testing.T) {
	users := memory.NewUserRepository()
	auth := NewAuthService(users, memory.NewTokenStore(), "secret", time.Hour, zerolog.Nop())
	u, err := auth.Register(context.Background(), registration("alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	svc := NewUserService(users, &failingTokenStore{err: errors.New("redis down")}, time.Hour, zerolog.Nop())
	if _, err := svc.ReplaceRoles(context.Background(), u.ID, domain.NewRoleSet(domain.RoleAdmin)); err != nil {
		t.Fatalf("expected role change to succeed, got %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	svc, auth, u := newUserFixture(t)
	ctx := context.Background()
	session, _, _ := auth.Login(ctx, "alice", "secret1")

	if err := svc.Delete(ctx, u.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, u.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected deleted user to be gone, got %v", err)
	}
	if _, err := auth.Authenticate(ctx, session.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected deleted user's session to be revoked, got %v", err)
	}
	if err := svc.Delete(ctx, u.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	svc, auth, u := newUserFixture(t)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, u.ID, "wrong", "newpass1"); !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}

	err := svc.ChangePassword(ctx, u.ID, "secret1", "abc")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields()["new_password"] == "" {
		t.Fatalf("expected new_password validation error, got %v", err)
	}

	if err := svc.ChangePassword(ctx, u.ID, "secret1", "newpass1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := auth.Login(ctx, "alice", "newpass1"); err != nil {
		t.Fatalf("expected login with new password, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "alice", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected old password to be rejected, got %v", err)
	}
}

func TestUserService_ListAndCount(t *testing.T) {
	svc, auth, _ := newUserFixture(t)
	ctx := context.Background()
	if _, err := auth.Register(ctx, registration("bob", "bob@example.com")); err != nil {
		t.Fatalf("register: %v", err)
	}

	users, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 || users[0].Username != "alice" || users[1].Username != "bob" {
		t.Fatalf("unexpected users: %+v", users)
	}
	if n, _ := svc.Count(ctx); n != 2 {
		t.Fatalf("expected count 2, got %d", n)
	}
}
