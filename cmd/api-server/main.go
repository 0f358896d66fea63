package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pr-poehali-dev/apartment-rental-moscow/db"
	"github.com/pr-poehali-dev/apartment-rental-moscow/db/migrations"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/auth"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/config"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/handlers"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/logger"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/media"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/notify"
	"github.com/pr-poehali-dev/apartment-rental-moscow/models"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "rental-server",
		Short: "Admin panel and owner dashboard API",
		RunE:  runServe,
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Apply migrations and start the HTTP server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE:  runMigrate,
		},
		newCreateAdminCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*config.Config, zerolog.Logger, *db.Storage, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), nil, nil, err
	}
	log := logger.New(cfg)

	conn, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, log, nil, nil, err
	}

	// Миграции при каждом старте
	if err := migrations.Run(ctx, conn.DB); err != nil {
		conn.Close()
		return nil, log, nil, nil, err
	}
	return cfg, log, db.NewStorage(conn), func() { conn.Close() }, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	_, log, _, closeDB, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()
	log.Info().Msg("migrations applied")
	return nil
}

// create-admin: вход в админку на чистой базе. Повторный запуск меняет пароль.
func newCreateAdminCmd() *cobra.Command {
	var username, password, fullName string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account or reset its password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			username = strings.TrimSpace(username)
			password = strings.TrimSpace(password)
			if username == "" || password == "" {
				return errors.New("username and password must not be empty")
			}

			_, log, store, closeDB, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			admin := &models.Admin{Username: username, PasswordHash: auth.HashPassword(password)}
			if name := strings.TrimSpace(fullName); name != "" {
				admin.FullName = &name
			}
			if err := store.CreateAdmin(cmd.Context(), admin); err != nil {
				return err
			}
			log.Info().Int64("id", admin.ID).Str("username", admin.Username).Msg("admin saved")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "admin login")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&fullName, "full-name", "", "display name")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, store, closeDB, err := setup(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	telegram := notify.NewTelegram(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramChatID, log)
	s3cfg := media.Config{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		CDNHost:         cfg.CDNHost,
	}
	uploader := media.NewUploader(media.NewS3Client(s3cfg), s3cfg)

	h := handlers.NewHandler(store, telegram, uploader, cfg, log)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      h.Router(),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ServerAddress).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
