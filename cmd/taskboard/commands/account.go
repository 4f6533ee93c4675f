package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskboard/client/internal/application/session"
	"github.com/taskboard/client/internal/domain/entities"
)

// NewAccountCommands creates login, register, oauth, logout and status.
func NewAccountCommands(opts *Options) []*cobra.Command {
	var email, password, username string

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			_, err := r.app.Auth.Login(ctx, email, password)
			return err
		}),
	}
	loginCmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	loginCmd.Flags().StringVar(&password, "password", "", "Account password (required)")

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			_, err := r.app.Auth.Register(ctx, email, password, username)
			return err
		}),
	}
	registerCmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	registerCmd.Flags().StringVar(&password, "password", "", "Account password (required)")
	registerCmd.Flags().StringVar(&username, "username", "", "Display name (required)")

	oauthCmd := &cobra.Command{
		Use:   "oauth <google|github> <code>",
		Short: "Log in with an authorization code from an OAuth provider",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			_, err := r.app.Auth.OAuthLogin(ctx, entities.OAuthProvider(args[0]), args[1])
			return err
		}),
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			if err := r.requireLogin(); err != nil {
				return err
			}
			return r.app.Auth.Logout(ctx)
		}),
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the persisted session",
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			return r.renderer.Status(sessionStatus(ctx, r, time.Now()))
		}),
	}

	return []*cobra.Command{loginCmd, registerCmd, oauthCmd, logoutCmd, statusCmd}
}

// StatusView describes the persisted session.
type StatusView struct {
	LoggedIn           bool       `json:"loggedIn" yaml:"loggedIn"`
	Email              string     `json:"email,omitempty" yaml:"email,omitempty"`
	Username           string     `json:"username,omitempty" yaml:"username,omitempty"`
	HasUsedGoogleOauth bool       `json:"hasUsedGoogleOauth" yaml:"hasUsedGoogleOauth"`
	Subject            string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Expired            bool       `json:"expired" yaml:"expired"`
	Theme              string     `json:"theme" yaml:"theme"`
}

func sessionStatus(ctx context.Context, r *runtime, now time.Time) StatusView {
	s := r.app.State()
	view := StatusView{
		LoggedIn:           s.IsLoggedIn,
		HasUsedGoogleOauth: s.HasUsedGoogleOauth,
		Theme:              string(s.ThemeMode),
	}

	if user, ok := r.app.Session.CachedUser(ctx); ok {
		view.Email = user.Email
		view.Username = user.Username
	}
	if token, ok := r.app.Session.Token(ctx); ok {
		if info, ok := session.InspectToken(token, now); ok {
			view.Subject = info.Subject
			view.ExpiresAt = info.ExpiresAt
			view.Expired = info.Expired
		}
	}
	return view
}
