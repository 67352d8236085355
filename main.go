package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nursery/internal/app"
	"nursery/internal/config"
	"nursery/internal/database"
	"nursery/internal/logging"
	"nursery/internal/repositories"
	"nursery/internal/seed"
	"nursery/internal/services"
	"nursery/internal/session"
	"nursery/internal/telemetry"
	"nursery/pkg/rabbitmq"

	"github.com/spf13/cobra"
	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	shutdownTimeout      = 10 * time.Second
	sessionSweepInterval = time.Minute
)

// cliEnv is what every subcommand starts from.
type cliEnv struct {
	cfg *config.Config
	log *zap.Logger
}

// openDB connects and migrates the schema.
func (rt *cliEnv) openDB() (*gorm.DB, error) {
	db, err := database.Open(rt.cfg.DBDriver, rt.cfg.DatabaseDSN, rt.log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		closeDB(db)
		return nil, err
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func newRootCmd() *cobra.Command {
	rt := &cliEnv{}
	var envFile string

	root := &cobra.Command{
		Use:           "nursery",
		Short:         "Plant nursery storefront API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			rt.cfg, rt.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.log != nil {
				_ = rt.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")

	root.AddCommand(
		newServeCmd(rt),
		newMigrateCmd(rt),
		newSeedCmd(rt),
		newExportCmd(rt),
	)
	return root
}

func newServeCmd(rt *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the order event consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rt)
		},
	}
}

func serve(ctx context.Context, rt *cliEnv) error {
	cfg, log := rt.cfg, rt.log
	if err := cfg.RequireSecret(); err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Setup(cfg.TracingEnabled, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	// --- Database ---
	db, err := rt.openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)
	if cfg.SeedOnStart {
		if _, err := seed.Seed(ctx, repositories.NewGORMPlantRepository(db), log); err != nil {
			return err
		}
	}

	// --- Session registry ---
	var registry session.Registry = session.NewMemoryRegistry()
	if cfg.RedisURL != "" {
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		registry = session.NewRedisRegistry(client, session.DefaultKeyPrefix)
		log.Info("sessions kept in redis")
	} else {
		log.Warn("REDIS_URL not set, sessions kept in memory")
	}

	// --- RabbitMQ ---
	opts := app.Options{
		DB:          db,
		Registry:    registry,
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	}
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			return err
		}
		defer mqClient.Close()
		opts.Publisher = mqClient
	} else {
		log.Warn("RABBITMQ_URL not set, order events disabled")
	}

	svc := app.New(opts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", zap.String("addr", cfg.AppPort))
		if err := svc.Fiber.Listen(cfg.AppPort); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return svc.Sessions.Run(gctx, sessionSweepInterval)
	})
	if mqClient != nil {
		g.Go(func() error {
			log.Info("starting order event consumer")
			err := mqClient.ConsumeOrderEvents(gctx, func(msg amqp.Delivery) error {
				return svc.Orders.HandleOrderEvent(gctx, msg.RoutingKey, msg.Body)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("order consumer stopped: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		return svc.Fiber.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server gracefully stopped")
	return nil
}

func newMigrateCmd(rt *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rt.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)
			rt.log.Info("database migrated", zap.String("driver", rt.cfg.DBDriver))
			return nil
		},
	}
}

func newSeedCmd(rt *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the starter plant catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rt.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)
			created, err := seed.Seed(cmd.Context(), repositories.NewGORMPlantRepository(db), rt.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d plants\n", created)
			return nil
		},
	}
}

func newExportCmd(rt *cliEnv) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the plant catalogue to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rt.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()

			plants := services.NewPlantService(repositories.NewGORMPlantRepository(db), rt.log)
			if err := plants.ExportPlants(cmd.Context(), f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "plants exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "plants.xlsx", "output file")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "nursery:", err)
		os.Exit(1)
	}
}
