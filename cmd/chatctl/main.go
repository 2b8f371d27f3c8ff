// Command chatctl is operator tooling for the clinic assistant: it classifies
// messages against the live rule tables, lists rules and drops the rule cache.
package main

import (
	"context"
	"fmt"
	"os"

	"clinic-assistant/internal/cache"
	"clinic-assistant/internal/repository"
	"clinic-assistant/pkg/config"
	"clinic-assistant/pkg/logger"
	"clinic-assistant/pkg/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "chatctl",
		Short:         "Clinic assistant operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(cacheCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env is what every subcommand needs: config, a logger and a database pool.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *pgxpool.Pool

	scopes       *repository.ScopeRepository
	restrictions *repository.RestrictionRepository
}

func connect(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger := logger.Get()

	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:          cfg,
		logger:       appLogger,
		db:           db,
		scopes:       repository.NewScopeRepository(db, appLogger),
		restrictions: repository.NewRestrictionRepository(db, appLogger),
	}, nil
}

func (e *env) Close() {
	e.db.Close()
	logger.Sync()
}

// ruleCache returns nil when Redis is not configured or unreachable.
func (e *env) ruleCache(ctx context.Context) (*cache.RuleCache, func()) {
	if !e.cfg.Redis.Enabled() {
		return nil, func() {}
	}
	client, err := cache.NewClient(ctx, &e.cfg.Redis)
	if err != nil {
		e.logger.Warn("Rule cache unavailable", zap.Error(err))
		return nil, func() {}
	}
	return cache.NewRuleCache(client, e.cfg.Chat.RulesCacheTTL, e.logger), func() { _ = client.Close() }
}
