package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/twelve-week-sync/internal/config"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
	"github.com/comitanigiacomo/twelve-week-sync/internal/ui"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema of the configured SQL backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := openBackend(context.Background())
			if err != nil {
				return err
			}
			defer backend.Close()

			if backend.Kind == config.BackendLocal {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Local snapshot backend, nothing to migrate."))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s schema is up to date\n", ui.IconDone, backend.Kind)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var user string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if user == "" {
				user = cfg.User
			}
			if ttl <= 0 {
				ttl = cfg.JWT.Duration
			}

			token, err := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, ttl).GenerateToken(user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Muted.Render(fmt.Sprintf("%s token for %s, valid %s", ui.IconKey, user, ttl)))
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Subject of the token (default: configured user)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Lifetime (default: jwt.duration)")
	return cmd
}
