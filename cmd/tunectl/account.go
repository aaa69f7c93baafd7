package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/giannis84/tunelib/internal/handlers"
)

// Register creates an account and stores its token.
func (r *Runner) Register(ctx context.Context, cmd *cli.Command) error {
	req := handlers.RegisterRequest{
		Email:     cmd.String("email"),
		Username:  cmd.String("username"),
		Password:  cmd.String("password"),
		Name:      cmd.String("name"),
		LastName:  cmd.String("last-name"),
		BirthDate: cmd.String("birth-date"),
	}
	if bio := cmd.String("bio"); bio != "" {
		req.Bio = &bio
	}

	session, err := r.api.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	r.logger.Debug("registered", "user", session.Profile.ID)
	if cmd.Bool("json") {
		return r.writeJSON(session.Profile)
	}
	r.writePlain("%s. Signed in as %s.\n", session.Message, session.Profile.Username)
	return nil
}

func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	session, err := r.api.Login(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(session.Profile)
	}
	r.writePlain("%s. Signed in as %s.\n", session.Message, session.Profile.Username)
	return nil
}

func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if err := r.api.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	r.writePlain("Logged out.\n")
	return nil
}

// Whoami prints the signed-in profile.
func (r *Runner) Whoami(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.api.Profile(ctx)
	if err != nil {
		return fmt.Errorf("whoami: %w", err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(profile)
	}
	r.writePlain("Username: %s\n", profile.Username)
	r.writePlain("Email: %s\n", profile.Email)
	r.writePlain("Name: %s %s\n", profile.Name, profile.LastName)
	r.writePlain("Born: %s\n", profile.BirthDate.Format("2006-01-02"))
	if profile.Bio != nil && *profile.Bio != "" {
		r.writePlain("Bio: %s\n", *profile.Bio)
	}
	return nil
}

func (r *Runner) Password(ctx context.Context, cmd *cli.Command) error {
	confirm := cmd.String("confirm")
	if confirm == "" {
		confirm = cmd.String("new")
	}
	err := r.api.UpdatePassword(ctx, handlers.UpdatePasswordRequest{
		CurrentPassword:         cmd.String("current"),
		NewPassword:             cmd.String("new"),
		NewPasswordConfirmation: confirm,
	})
	if err != nil {
		return fmt.Errorf("password: %w", err)
	}
	r.writePlain("Password updated.\n")
	return nil
}

func (r *Runner) DeleteAccount(ctx context.Context, cmd *cli.Command) error {
	if err := r.api.DeleteAccount(ctx, cmd.String("password")); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	r.writePlain("Account deleted.\n")
	return nil
}
