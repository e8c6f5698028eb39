package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/IgorGrieder/slugs/internal/config"
	"github.com/IgorGrieder/slugs/internal/infrastructure/logger"
	"github.com/IgorGrieder/slugs/internal/processing/apikeys"
	"github.com/IgorGrieder/slugs/internal/storage"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		ownerID string
		name    string
		days    int
	)

	cmd := &cobra.Command{
		Use:   "createapikey",
		Short: "Issue an API key for an owner",
		Long:  "Issues an API key against the configured store and prints the secret once.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Storage.Backend == config.BackendMemory {
				return fmt.Errorf("STORAGE_BACKEND=memory keeps keys in the server process; use mongo or postgres")
			}
			if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
				return err
			}
			defer logger.Sync()

			backend, err := storage.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer backend.Close()

			var expiresInDays *int
			if days > 0 {
				expiresInDays = &days
			}

			issued, err := apikeys.NewAuthority(backend.APIKeys).Issue(cmd.Context(), strings.TrimSpace(ownerID), name, expiresInDays)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "API key (store it now, it is not shown again):\n%s\n\n", issued.Secret)
			fmt.Fprintf(out, "ID:     %s\n", issued.ID)
			fmt.Fprintf(out, "Prefix: %s\n", issued.Prefix)
			fmt.Fprintf(out, "Owner:  %s\n", issued.OwnerID)
			if issued.ExpiresAt != nil {
				fmt.Fprintf(out, "Expires: %s\n", issued.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "owner (user) id the key belongs to")
	cmd.Flags().StringVar(&name, "name", "default", "display name for the key")
	cmd.Flags().IntVar(&days, "days", 0, "expire the key after this many days (0 = never)")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}
