package handlers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/giannis84/tunelib/internal/auth"
	"github.com/giannis84/tunelib/internal/database"
	"github.com/golang-jwt/jwt/v5"
)

func testIssuer() *auth.Issuer {
	return auth.NewIssuer(auth.AuthConfig{Secret: "handlers-test-secret", TokenTTL: time.Hour})
}

func aliceRequest() RegisterRequest {
	return RegisterRequest{
		Email:     "a@x.com",
		Username:  "alice",
		Password:  "password1",
		Name:      "Alice",
		LastName:  "Smith",
		BirthDate: "2000-01-01",
	}
}

func registerAlice(t *testing.T, repo *database.MockRepository) *Session {
	t.Helper()
	session, err := Register(testContext(), repo, testIssuer(), aliceRequest())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return session
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*RegisterRequest)
		seed      bool
		errSubstr string // empty: success expected
	}{
		{name: "valid profile"},
		{name: "bio is optional but kept", mutate: func(r *RegisterRequest) { bio := "hi"; r.Bio = &bio }},
		{name: "email is normalised", mutate: func(r *RegisterRequest) { r.Email = "  A@X.com " }},
		{name: "invalid email", mutate: func(r *RegisterRequest) { r.Email = "not-an-email" }, errSubstr: "email must be a valid email address"},
		{name: "short password", mutate: func(r *RegisterRequest) { r.Password = "short" }, errSubstr: "password must be at least 8 characters"},
		{name: "password longer than bcrypt accepts", mutate: func(r *RegisterRequest) { r.Password = strings.Repeat("p", 80) }, errSubstr: "password must not exceed 72 bytes"},
		{name: "password of exactly 72 bytes", mutate: func(r *RegisterRequest) { r.Password = strings.Repeat("p", 72) }},
		{name: "bad birth date", mutate: func(r *RegisterRequest) { r.BirthDate = "01/01/2000" }, errSubstr: "birth_date must be a date in YYYY-MM-DD format"},
		{name: "future birth date", mutate: func(r *RegisterRequest) { r.BirthDate = time.Now().AddDate(1, 0, 0).Format(time.DateOnly) }, errSubstr: "birth_date must not be in the future"},
		{name: "missing name", mutate: func(r *RegisterRequest) { r.Name = " " }, errSubstr: "name is required"},
		{name: "email taken", seed: true, mutate: func(r *RegisterRequest) { r.Username = "alice2" }, errSubstr: "email has already been taken"},
		{name: "username taken", seed: true, mutate: func(r *RegisterRequest) { r.Email = "b@x.com" }, errSubstr: "username has already been taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := database.NewMockRepository()
			if tt.seed {
				registerAlice(t, repo)
			}

			req := aliceRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			session, err := Register(testContext(), repo, testIssuer(), req)

			if tt.errSubstr != "" {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("expected *ValidationError, got %T: %v", err, err)
				}
				if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("expected error to contain %q, got: %v", tt.errSubstr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}

			if session.Token == "" {
				t.Error("expected a token")
			}
			p := session.Profile
			if p.ID == "" || p.Email != "a@x.com" || p.Username != req.Username {
				t.Errorf("unexpected profile %+v", p)
			}
			if p.PasswordHash == "" || p.PasswordHash == req.Password {
				t.Error("password must be stored hashed")
			}
			if !p.BirthDate.Equal(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)) {
				t.Errorf("BirthDate = %v", p.BirthDate)
			}
			if req.Bio != nil && (p.Bio == nil || *p.Bio != *req.Bio) {
				t.Errorf("Bio = %v, want %q", p.Bio, *req.Bio)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name    string
		req     LoginRequest
		wantErr error
		valErr  bool
	}{
		{name: "valid credentials", req: LoginRequest{Email: "a@x.com", Password: "password1"}},
		{name: "email case-insensitive", req: LoginRequest{Email: "A@X.COM", Password: "password1"}},
		{name: "wrong password", req: LoginRequest{Email: "a@x.com", Password: "password2"}, wantErr: ErrInvalidCredentials},
		{name: "unknown email", req: LoginRequest{Email: "z@x.com", Password: "password1"}, wantErr: ErrInvalidCredentials},
		{name: "missing password", req: LoginRequest{Email: "a@x.com"}, valErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := database.NewMockRepository()
			registered := registerAlice(t, repo)

			session, err := Login(testContext(), repo, testIssuer(), tt.req)
			if tt.valErr {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("expected *ValidationError, got %T: %v", err, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil {
				return
			}
			if session.Profile.ID != registered.Profile.ID {
				t.Errorf("logged in as %q, want %q", session.Profile.ID, registered.Profile.ID)
			}
			if session.Token == registered.Token {
				t.Error("expected a new token on login")
			}
		})
	}
}

func TestLogout_RevokesOnlyPresentedToken(t *testing.T) {
	repo := database.NewMockRepository()
	ctx := testContext()
	issuer := testIssuer()
	registerAlice(t, repo)

	first, err := Login(ctx, repo, issuer, LoginRequest{Email: "a@x.com", Password: "password1"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Login(ctx, repo, issuer, LoginRequest{Email: "a@x.com", Password: "password1"})
	if err != nil {
		t.Fatal(err)
	}

	firstID := tokenID(t, first.Token)
	secondID := tokenID(t, second.Token)
	userID := first.Profile.ID

	if err := Logout(ctx, repo, firstID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if active, _ := repo.TokenActiveInDB(ctx, firstID, userID); active {
		t.Error("logged out token still active")
	}
	if active, _ := repo.TokenActiveInDB(ctx, secondID, userID); !active {
		t.Error("other session was revoked")
	}
}

func TestUpdatePassword(t *testing.T) {
	tests := []struct {
		name      string
		req       UpdatePasswordRequest
		wantErr   error
		errSubstr string
	}{
		{
			name: "valid change",
			req:  UpdatePasswordRequest{CurrentPassword: "password1", NewPassword: "password2", NewPasswordConfirmation: "password2"},
		},
		{
			name:    "wrong current password",
			req:     UpdatePasswordRequest{CurrentPassword: "nope-nope", NewPassword: "password2", NewPasswordConfirmation: "password2"},
			wantErr: ErrIncorrectPassword,
		},
		{
			name:      "confirmation mismatch",
			req:       UpdatePasswordRequest{CurrentPassword: "password1", NewPassword: "password2", NewPasswordConfirmation: "password3"},
			errSubstr: "new_password confirmation does not match",
		},
		{
			name:      "new password too short",
			req:       UpdatePasswordRequest{CurrentPassword: "password1", NewPassword: "short", NewPasswordConfirmation: "short"},
			errSubstr: "new_password must be at least 8 characters",
		},
		{
			name:      "new password too long",
			req:       UpdatePasswordRequest{CurrentPassword: "password1", NewPassword: strings.Repeat("p", 80), NewPasswordConfirmation: strings.Repeat("p", 80)},
			errSubstr: "new_password must not exceed 72 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := database.NewMockRepository()
			ctx := testContext()
			session := registerAlice(t, repo)

			err := UpdatePassword(ctx, repo, session.Profile.ID, tt.req)
			switch {
			case tt.errSubstr != "":
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("expected *ValidationError, got %T: %v", err, err)
				}
				if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Fatalf("expected error containing %q, got %v", tt.errSubstr, err)
				}
				return
			case !errors.Is(err, tt.wantErr):
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			case tt.wantErr != nil:
				return
			}

			if _, err := Login(ctx, repo, testIssuer(), LoginRequest{Email: "a@x.com", Password: "password2"}); err != nil {
				t.Errorf("login with new password failed: %v", err)
			}
			if _, err := Login(ctx, repo, testIssuer(), LoginRequest{Email: "a@x.com", Password: "password1"}); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("old password still accepted: %v", err)
			}
		})
	}
}

func TestDeleteAccount(t *testing.T) {
	repo := database.NewMockRepository()
	ctx := testContext()
	session := registerAlice(t, repo)
	userID := session.Profile.ID

	if _, err := AddToLibrary(ctx, repo, userID, validAddRequest("T1")); err != nil {
		t.Fatal(err)
	}

	if err := DeleteAccount(ctx, repo, userID, DeleteAccountRequest{Password: "wrong-password"}); !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}
	var valErr *ValidationError
	if err := DeleteAccount(ctx, repo, userID, DeleteAccountRequest{}); !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	if err := DeleteAccount(ctx, repo, userID, DeleteAccountRequest{Password: "password1"}); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if _, err := GetProfile(ctx, repo, userID); !errors.Is(err, database.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if entries, _ := GetLibrary(ctx, repo, userID); len(entries) != 0 {
		t.Errorf("library entries survived account deletion: %d", len(entries))
	}
	if active, _ := repo.TokenActiveInDB(ctx, tokenID(t, session.Token), userID); active {
		t.Error("token survived account deletion")
	}
}

// tokenID extracts the jti claim without verifying the signature.
func tokenID(t *testing.T, token string) string {
	t.Helper()
	claims := jwtClaims(t, token)
	id, _ := claims["jti"].(string)
	if id == "" {
		t.Fatal("token has no jti")
	}
	return id
}

func jwtClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("parsing token: %v", err)
	}
	return claims
}
