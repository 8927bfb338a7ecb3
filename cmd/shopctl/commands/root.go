package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app"
	"github.com/ikkim/storefront-backend/internal/cache"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/redis"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	// Global flags
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "shopctl",
	Short: "Storefront administration tool",
	Long: `shopctl runs maintenance tasks against the storefront database.

It reads the same .env / environment configuration as the API server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		format := "console"
		if jsonOutput {
			format = "json"
		}
		logger.Initialize(logger.Config{
			Level:   level,
			Format:  format,
			Output:  os.Stderr,
			Service: "shopctl",
		})
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Log in JSON format")
}

// env is an opened database plus the services built on top of it.
type env struct {
	cfg      *config.Config
	conn     *gorm.DB
	services *app.Services
	close    func()
}

// openEnv connects to the configured database. Writes go through the same
// services as the API, so a shared redis cache is invalidated as well.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := db.Initialize(&cfg.Database); err != nil {
		return nil, err
	}
	closers := []func() error{db.Close}

	if cfg.Cache.Driver == cache.DriverRedis {
		if err := redis.Init(&cfg.Redis); err != nil {
			_ = db.Close()
			return nil, err
		}
		closers = append(closers, redis.Close)
	}
	readCache, err := cache.New(&cfg.Cache, redis.GetClient())
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, err
	}

	return &env{
		cfg:      cfg,
		conn:     db.GetDB(),
		services: app.NewServices(cfg, db.GetDB(), readCache),
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				if err := closers[i](); err != nil {
					logger.Warn("Failed to release resource", map[string]interface{}{
						"error": err.Error(),
					})
				}
			}
		},
	}, nil
}
