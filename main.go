package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/otica-api/config"
	"github.com/kendall-kelly/otica-api/controllers"
	"github.com/kendall-kelly/otica-api/logger"
	"github.com/kendall-kelly/otica-api/models"
	"github.com/kendall-kelly/otica-api/routes"
	"github.com/kendall-kelly/otica-api/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "otica-api",
		Short:         "Optical store API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Setup(cfg.LogLevel, cfg.GoEnv)
			if cfg.EnvFile != "" {
				log.Info().Str("file", cfg.EnvFile).Msg("Loaded configuration")
			} else {
				log.Debug().Msg("No .env file found, using system environment variables")
			}
			return config.ConnectDatabase(cfg)
		},
		// serve is the default
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := models.Migrate(config.GetDB()); err != nil {
					return err
				}
				log.Info().Msg("Database migration completed successfully")
				return nil
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert the default lens catalog, admin and test customer",
			RunE: func(cmd *cobra.Command, args []string) error {
				db := config.GetDB()
				if err := models.Migrate(db); err != nil {
					return err
				}
				cache, err := services.InitCache(cmd.Context())
				if err != nil {
					log.Warn().Err(err).Msg("Catalog cache unavailable, skipping invalidation")
				}
				return seedDatabase(cmd.Context(), db, cache)
			},
		},
		newCreateAdminCommand(),
	)
	return root
}

func newCreateAdminCommand() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := createAdmin(cmd.Context(), config.GetDB(), name, email, password)
			if err != nil {
				return err
			}
			log.Info().Str("email", user.Email).Msg("Admin created")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrador", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password (min 6 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// serve migrates the schema, connects the optional backends and runs the server
// until SIGINT or SIGTERM
func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.GetConfig()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := models.Migrate(config.GetDB()); err != nil {
		return err
	}

	if _, err := services.InitCache(ctx); err != nil {
		// the catalog still works from the database
		log.Warn().Err(err).Msg("Catalog cache disabled")
	}
	if _, err := services.InitStorage(ctx); err != nil {
		return err
	}
	publisher := services.InitEventPublisher()
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close event publisher")
		}
	}()

	router, err := newRouter(cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.GoEnv).Msg("Optical store API is running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newRouter builds the API router and adds the health endpoints
func newRouter(cfg *config.Config) (*gin.Engine, error) {
	auth, err := controllers.NewAuthService()
	if err != nil {
		return nil, err
	}

	router := routes.Setup(cfg, auth)
	router.GET("/api/health", healthCheck)
	router.GET("/api/database/status", databaseStatus)
	return router, nil
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Optical store API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Works for every supported driver, unlike querying pg_tables
	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
