package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	corecmd "github.com/m3rciful/hallbot/core/cmd"
	coreconfig "github.com/m3rciful/hallbot/core/config"
	"github.com/m3rciful/hallbot/core/database"
	"github.com/m3rciful/hallbot/internal/hallbot"
	"github.com/m3rciful/hallbot/internal/notice"
	"github.com/m3rciful/hallbot/internal/questions"
)

func newQuestionsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Inspect stored support questions",
	}
	cmd.AddCommand(newQuestionsListCmd(configPath))
	cmd.AddCommand(newQuestionsStatsCmd(configPath))
	return cmd
}

func newQuestionsListCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print unanswered questions, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), *configPath, func(cfg *coreconfig.Config, store questions.Store) error {
				pending, err := store.Pending(cmd.Context())
				if err != nil {
					return err
				}
				if limit <= 0 {
					limit = cfg.Support.ListLimit
				}
				f := notice.New(cfg.Support.VenueName, cfg.Support.PreviewRunes)
				fmt.Fprintln(cmd.OutOrStdout(), f.QuestionList(questions.SortedByAge(pending), limit).Text)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum entries to print (default support.list_limit)")
	return cmd
}

func newQuestionsStatsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print question counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), *configPath, func(cfg *coreconfig.Config, store questions.Store) error {
				st, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				f := notice.New(cfg.Support.VenueName, cfg.Support.PreviewRunes)
				fmt.Fprintln(cmd.OutOrStdout(), f.Stats(st).Text)
				return nil
			})
		},
	}
}

// withStore opens the configured store read side without starting the bot.
// Postgres is queried as is; run migrate first on a fresh database.
func withStore(ctx context.Context, configPath string, fn func(*coreconfig.Config, questions.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	var db *sqlx.DB
	if cfg.Storage.Driver == coreconfig.StoragePostgres {
		db, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
	}
	store, err := hallbot.OpenStore(ctx, cfg, db)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending postgres migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != coreconfig.StoragePostgres {
				return fmt.Errorf("migrate: storage.driver is %q, nothing to migrate", cfg.Storage.Driver)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := database.RunMigrations(ctx, cfg.Database); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func loadConfig(explicit string) (*coreconfig.Config, error) {
	path := corecmd.ResolveConfigPath(explicit, corecmd.DefaultConfigEnv, defaultConfigPath)
	cfg, err := coreconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
