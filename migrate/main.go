package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"qrmenu/config"
	"qrmenu/pkg/logger"
	"qrmenu/schema"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

type opener func(config.DBConfig) (*sql.DB, error)

func openPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newRootCmd(open opener) *cobra.Command {
	var configFile string

	withDB := func(cmd *cobra.Command, fn func(ctx context.Context, db *sql.DB) error) error {
		cfg, err := config.Load("migrate", configFile)
		if err != nil {
			return err
		}
		db, err := open(cfg.DB)
		if err != nil {
			return fmt.Errorf("connect to %s:%s/%s: %w", cfg.DB.Host, cfg.DB.Port, cfg.DB.Name, err)
		}
		defer db.Close()
		return fn(cmd.Context(), db)
	}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply and inspect the qrmenu database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (defaults to $QRMENU_CONFIG)")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewNop()
			if cfg, err := config.Load("migrate", configFile); err == nil {
				if l, err := logger.New(cfg.Log); err == nil {
					log = l
				}
			}
			return withDB(cmd, func(ctx context.Context, db *sql.DB) error {
				applied, err := schema.Migrate(ctx, db)
				for _, m := range applied {
					log.Infow("migration applied", "version", m.Version, "name", m.Name)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s), schema at version %d\n", len(applied), schema.Latest())
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List embedded migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, db *sql.DB) error {
				statuses, err := schema.Status(ctx, db)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, st := range statuses {
					state := "pending"
					if st.Applied() {
						state = "applied " + st.AppliedAt.Format(time.RFC3339)
					}
					fmt.Fprintf(out, "%04d  %-20s %s\n", st.Version, st.Name, state)
				}
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "verify",
		Short: "Exit non-zero unless the schema is at the latest version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, db *sql.DB) error {
				return schema.Verify(ctx, db)
			})
		},
	})

	return root
}

func main() {
	if err := newRootCmd(openPostgres).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
