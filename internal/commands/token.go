package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/limistah/bank-reconciliation/internal/auth"
	"github.com/limistah/bank-reconciliation/internal/config"
)

func newTokenCommand() *cobra.Command {
	var actor auth.Actor
	var ttl time.Duration
	var all bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API token for an operator using JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg := config.LoadConfig()
			if all {
				actor.Scopes = actor.Scopes[:0]
				for _, s := range auth.AllScopes {
					actor.Scopes = append(actor.Scopes, string(s))
				}
			}
			return runToken(cmd.OutOrStdout(), auth.NewJWTService(cfg.App.JWTSecret, cfg.App.JWTIssuer), actor, ttl)
		},
	}

	cmd.Flags().UintVar(&actor.TenantID, "tenant", 0, "tenant id (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().UintVar(&actor.UserID, "user", 0, "user id")
	cmd.Flags().StringVar(&actor.Email, "email", "", "user email")
	cmd.Flags().StringSliceVar(&actor.Scopes, "scope", nil, "granted scope, repeatable")
	cmd.Flags().BoolVar(&all, "all-scopes", false, "grant every scope")
	cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "token lifetime")

	return cmd
}

func runToken(out io.Writer, jwtService *auth.JWTService, actor auth.Actor, ttl time.Duration) error {
	if actor.TenantID == 0 {
		return errors.New("tenant must not be 0")
	}
	for _, s := range actor.Scopes {
		if !knownScope(s) {
			return fmt.Errorf("unknown scope %q", s)
		}
	}

	token, err := jwtService.GenerateToken(actor, ttl)
	if err != nil {
		return fmt.Errorf("signing token: %w", err)
	}
	fmt.Fprintln(out, token)
	return nil
}

func knownScope(s string) bool {
	for _, known := range auth.AllScopes {
		if string(known) == s {
			return true
		}
	}
	return false
}
