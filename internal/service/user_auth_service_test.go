package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stg-catalog/internal/config"
	"github.com/stg-catalog/internal/constants"
	"github.com/stg-catalog/internal/models"
	"github.com/stg-catalog/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupUserAuthServiceTest(t *testing.T) (*UserAuthService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "user-auth-test-secret"
	cfg.UserJWT.ExpireHours = 1
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{
		MinLength:     8,
		RequireNumber: true,
	}
	return NewUserAuthService(cfg, repository.NewUserRepository(db)), db
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

func TestUserAuthServiceRegisterAndLogin(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)
	email := uniqueEmail("register")

	user, token, expiresAt, err := svc.Register("  "+email+"  ", "senha12345", "Maria")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != email {
		t.Fatalf("email must be trimmed and lowercased, got %q", user.Email)
	}
	if user.DisplayName != "Maria" {
		t.Fatalf("want display name Maria got %q", user.DisplayName)
	}
	if user.Status != constants.UserStatusActive {
		t.Fatalf("new user must be active, got %q", user.Status)
	}
	if user.PasswordHash == "senha12345" {
		t.Fatalf("password must be hashed")
	}
	if token == "" || !expiresAt.After(time.Now()) {
		t.Fatalf("register must issue a valid token")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("register must record last login")
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	validated, err := svc.ValidateClaims(claims)
	if err != nil {
		t.Fatalf("validate claims failed: %v", err)
	}
	if validated.ID != user.ID {
		t.Fatalf("claims resolve to wrong user: %d != %d", validated.ID, user.ID)
	}

	logged, _, _, err := svc.Login(email, "senha12345")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("login returned wrong user")
	}
}

func TestUserAuthServiceRegisterValidation(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)
	email := uniqueEmail("validation")

	if _, _, _, err := svc.Register("not-an-email", "senha12345", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("invalid email want ErrInvalidEmail got %v", err)
	}
	if _, _, _, err := svc.Register(email, "curta1", ""); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("short password want ErrWeakPassword got %v", err)
	}
	if _, _, _, err := svc.Register(email, "semnumeros", ""); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("password without number want ErrWeakPassword got %v", err)
	}

	if _, _, _, err := svc.Register(email, "senha12345", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, _, err := svc.Register(email, "senha12345", ""); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate email want ErrEmailExists got %v", err)
	}
}

func TestUserAuthServiceRegisterNicknameFromEmail(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)
	email := uniqueEmail("apelido")

	user, _, _, err := svc.Register(email, "senha12345", "   ")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	want := email[:len(email)-len("@example.com")]
	if user.DisplayName != want {
		t.Fatalf("want nickname %q got %q", want, user.DisplayName)
	}
}

func TestUserAuthServiceLoginFailures(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)
	email := uniqueEmail("login-fail")

	if _, _, _, err := svc.Login(email, "senha12345"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user want ErrInvalidCredentials got %v", err)
	}

	user, _, _, err := svc.Register(email, "senha12345", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, _, err := svc.Login(email, "senha-errada1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials got %v", err)
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, _, err := svc.Login(email, "senha12345"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("disabled user want ErrUserDisabled got %v", err)
	}
}

func TestUserAuthServiceLogoutInvalidatesTokens(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)
	email := uniqueEmail("logout")

	user, token, _, err := svc.Register(email, "senha12345", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if _, err := svc.ValidateClaims(claims); err != nil {
		t.Fatalf("token must be valid before logout: %v", err)
	}

	if err := svc.Logout(user.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.ValidateClaims(claims); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("token must be rejected after logout, got %v", err)
	}

	// 重新登录签发的新 Token 可用
	_, newToken, _, err := svc.Login(email, "senha12345")
	if err != nil {
		t.Fatalf("login after logout failed: %v", err)
	}
	newClaims, err := svc.ParseUserJWT(newToken)
	if err != nil {
		t.Fatalf("parse new token failed: %v", err)
	}
	if _, err := svc.ValidateClaims(newClaims); err != nil {
		t.Fatalf("new token must be valid: %v", err)
	}
}

func TestUserAuthServiceParseRejectsTampered(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)
	email := uniqueEmail("tampered")

	_, token, _, err := svc.Register(email, "senha12345", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.ParseUserJWT(token + "x"); err == nil {
		t.Fatalf("tampered token must be rejected")
	}
	if _, err := svc.ParseUserJWT("not.a.token"); err == nil {
		t.Fatalf("garbage token must be rejected")
	}
}
