package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/service"
	"github.com/thilinahansana/university-scheduler-console/pkg/config"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		email  string
		name   string
		secret string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing against the console",
		RunE: func(cmd *cobra.Command, args []string) error {
			userRole := models.UserRole(strings.ToLower(strings.TrimSpace(role)))
			switch userRole {
			case models.RoleAdmin, models.RoleFaculty, models.RoleStudent:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			if secret == "" {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				secret = cfg.JWT.Secret
			}
			if secret == "" {
				return fmt.Errorf("no signing secret: pass --secret or set JWT_SECRET")
			}

			auth := service.NewAuthService(nil, service.AuthConfig{
				AccessTokenSecret: secret,
				AccessTokenExpiry: ttl,
				Issuer:            "timetable-console",
			})
			token, expiresAt, err := auth.IssueToken(userID, userRole, email, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id, the student or faculty id for personal views")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "admin, faculty or student")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&name, "name", "", "full name claim")
	cmd.Flags().StringVar(&secret, "secret", "", "HMAC secret, defaults to JWT_SECRET")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
