package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"taskboard-api/internal/auth"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			if ttl <= 0 {
				ttl = cfg.JWT.TokenTTL
			}

			token, expiresAt, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, ttl).Issue(id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id the token is issued for")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default jwt.token_ttl)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
