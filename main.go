package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lonlait/blogicum/api"
	"github.com/lonlait/blogicum/config"
	"github.com/lonlait/blogicum/database"
	"github.com/lonlait/blogicum/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	app := config.Load(config.New())
	setupLogging(app)

	root := &cobra.Command{
		Use:           "blogicum",
		Short:         "Blogicum blog server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), app)
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context(), app)
			},
		},
		migrateCommand(app),
		categoryCommand(app),
		locationCommand(app),
		userCommand(app),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("blogicum exited with an error")
		os.Exit(1)
	}
}

func setupLogging(app config.App) {
	level, err := zerolog.ParseLevel(app.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if app.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// openDatabase connects and migrates the schema.
func openDatabase(app config.App) (*gorm.DB, error) {
	db, err := connectDatabase(app)
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return db, nil
}

func connectDatabase(app config.App) (*gorm.DB, error) {
	gormLogger := logger.New(
		&log.Logger,
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  app.Debug,
		},
	)

	db, err := database.Open(app, &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("testing database connection: %w", err)
	}

	return db, nil
}

func serve(ctx context.Context, app config.App) error {
	log.Info().Str("dbType", app.DBType).Msg("Initializing app...")

	db, err := openDatabase(app)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg == nil {
			cfg, err := awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				return aws.Config{}, fmt.Errorf("loading aws config: %w", err)
			}
			awsCfg = &cfg
		}
		return *awsCfg, nil
	}

	var parameters config.ParameterGetter
	if app.SecretKey == "" && app.SecretKeyParameter != "" {
		cfg, err := loadAWS()
		if err != nil {
			return err
		}
		parameters = ssm.NewFromConfig(cfg)
	}

	secret, err := config.ResolveSecretKey(ctx, app, parameters)
	if err != nil {
		return err
	}

	var media services.MediaStore
	switch app.MediaBackend {
	case config.MediaBackendS3:
		if app.S3Bucket == "" {
			return errors.New("MEDIA_BACKEND=s3 needs S3_BUCKET")
		}
		cfg, err := loadAWS()
		if err != nil {
			return err
		}
		media = services.NewS3MediaStore(s3.NewFromConfig(cfg), app.S3Bucket, app.ImagePrefix)
	case config.MediaBackendLocal:
		media = services.NewLocalMediaStore(app.MediaRoot, app.ImagePrefix)
	default:
		return fmt.Errorf("unsupported MEDIA_BACKEND %q", app.MediaBackend)
	}

	sessions := services.NewSessionManager(secret, app.SessionTTL, app.SecureCookies)

	server, err := api.NewServer(database.New(db), app, sessions, media)
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		errChannel := make(chan error, 1)
		go server.Start(errChannel)

		select {
		case err := <-errChannel:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			server.ShutdownGracefully(shutdownTimeout)
			return nil
		}
	})

	return g.Wait()
}
