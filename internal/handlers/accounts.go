package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/giannis84/tunelib/internal/auth"
	"github.com/giannis84/tunelib/internal/database"
	"github.com/giannis84/tunelib/internal/logging"
	"github.com/giannis84/tunelib/internal/models"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncorrectPassword  = errors.New("password is incorrect")
)

// AccountStore is the persistence needed by the account operations.
type AccountStore interface {
	database.UserRepository
	database.TokenRepository
}

// Session is the result of a successful register or login.
type Session struct {
	Token   string
	Profile *models.Profile
}

type RegisterRequest struct {
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	Name      string  `json:"name"`
	LastName  string  `json:"last_name"`
	BirthDate string  `json:"birth_date"`
	Bio       *string `json:"bio"`
}

func (r RegisterRequest) Validate() error {
	var checks []func() string
	checks = append(checks, required("email", r.Email)...)
	checks = append(checks, func() string { return checkEmail("email", r.Email) })
	checks = append(checks, required("username", r.Username)...)
	checks = append(checks,
		func() string { return requireNonEmpty("password", r.Password) },
		func() string { return checkMinLength("password", r.Password, minPasswordLength) },
		func() string { return checkMaxBytes("password", r.Password, maxPasswordBytes) },
	)
	checks = append(checks, required("name", r.Name)...)
	checks = append(checks, required("last_name", r.LastName)...)
	checks = append(checks,
		func() string { return requireNonEmpty("birth_date", r.BirthDate) },
		func() string { return checkDate("birth_date", r.BirthDate) },
	)
	return validate(checks...)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validate(
		func() string { return requireNonEmpty("email", r.Email) },
		func() string { return checkEmail("email", r.Email) },
		func() string { return requireNonEmpty("password", r.Password) },
	)
}

type UpdatePasswordRequest struct {
	CurrentPassword         string `json:"current_password"`
	NewPassword             string `json:"new_password"`
	NewPasswordConfirmation string `json:"new_password_confirmation"`
}

func (r UpdatePasswordRequest) Validate() error {
	return validate(
		func() string { return requireNonEmpty("current_password", r.CurrentPassword) },
		func() string { return requireNonEmpty("new_password", r.NewPassword) },
		func() string { return checkMinLength("new_password", r.NewPassword, minPasswordLength) },
		func() string { return checkMaxBytes("new_password", r.NewPassword, maxPasswordBytes) },
		func() string { return checkConfirmed("new_password", r.NewPassword, r.NewPasswordConfirmation) },
	)
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

func (r DeleteAccountRequest) Validate() error {
	return validate(func() string { return requireNonEmpty("password", r.Password) })
}

// Register creates a profile and signs the new user in.
// A taken email or username is reported as a *ValidationError.
func Register(ctx context.Context, store AccountStore, issuer *auth.Issuer, req RegisterRequest) (*Session, error) {
	req.Email = normalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	birthDate, _ := time.Parse(birthDateLayout, req.BirthDate)
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		LastName:     req.LastName,
		BirthDate:    birthDate,
		Bio:          req.Bio,
	}
	if err := store.CreateUserInDB(ctx, profile); err != nil {
		switch {
		case errors.Is(err, database.ErrEmailTaken):
			return nil, &ValidationError{Errors: []string{"email has already been taken"}}
		case errors.Is(err, database.ErrUsernameTaken):
			return nil, &ValidationError{Errors: []string{"username has already been taken"}}
		}
		return nil, err
	}

	logging.Log(ctx).Layer("handlers").Op("Register").User(profile.ID).Info("profile created")
	return startSession(ctx, store, issuer, profile)
}

// Login verifies the credentials and issues a fresh token. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func Login(ctx context.Context, store AccountStore, issuer *auth.Issuer, req LoginRequest) (*Session, error) {
	req.Email = normalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	profile, err := store.GetUserByEmailFromDB(ctx, req.Email)
	if errors.Is(err, database.ErrUserNotFound) {
		auth.BurnPasswordCheck(req.Password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.VerifyPassword(profile.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return startSession(ctx, store, issuer, profile)
}

// Logout revokes the token that authenticated the request. Other sessions stay valid.
func Logout(ctx context.Context, store AccountStore, tokenID string) error {
	return store.DeleteTokenFromDB(ctx, tokenID)
}

func GetProfile(ctx context.Context, store AccountStore, userID string) (*models.Profile, error) {
	return store.GetUserByIDFromDB(ctx, userID)
}

// UpdatePassword replaces the password after checking the current one.
func UpdatePassword(ctx context.Context, store AccountStore, userID string, req UpdatePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	profile, err := store.GetUserByIDFromDB(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(profile.PasswordHash, req.CurrentPassword); err != nil {
		return ErrIncorrectPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return store.UpdatePasswordInDB(ctx, userID, hash)
}

// DeleteAccount removes the profile; its library entries and tokens go with it.
func DeleteAccount(ctx context.Context, store AccountStore, userID string, req DeleteAccountRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	profile, err := store.GetUserByIDFromDB(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(profile.PasswordHash, req.Password); err != nil {
		return ErrIncorrectPassword
	}

	if err := store.DeleteUserFromDB(ctx, userID); err != nil {
		return err
	}
	logging.Log(ctx).Layer("handlers").Op("DeleteAccount").User(userID).Info("profile deleted")
	return nil
}

func startSession(ctx context.Context, store database.TokenRepository, issuer *auth.Issuer, profile *models.Profile) (*Session, error) {
	token, record, err := issuer.Issue(profile.ID)
	if err != nil {
		return nil, err
	}
	if err := store.CreateTokenInDB(ctx, record); err != nil {
		return nil, err
	}
	return &Session{Token: token, Profile: profile}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
