package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"Drivecalc/internal/auth"
	"Drivecalc/internal/config"
)

// NewTokenCommand .
func NewTokenCommand() *cobra.Command {
	var (
		login string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a host token signed with TOKEN_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			env := &auth.Authenv{JWTkey: []byte(cfg.Auth.TokenKey)}
			if !env.Enabled() {
				return errors.New("TOKEN_KEY is not set")
			}
			token, err := env.Sign(login, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&login, "login", "", "owner the token is issued to")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")
	cmd.MarkFlagRequired("login")
	return cmd
}
