package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talhabaigg/tsd3pl/internal/api"
	"github.com/talhabaigg/tsd3pl/internal/backup"
	"github.com/talhabaigg/tsd3pl/internal/config"
	"github.com/talhabaigg/tsd3pl/internal/database"
	"github.com/talhabaigg/tsd3pl/internal/notifications"
	"github.com/talhabaigg/tsd3pl/internal/repository"
	"github.com/talhabaigg/tsd3pl/internal/scheduler"
	"github.com/talhabaigg/tsd3pl/internal/service"

	"github.com/gin-gonic/gin"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:     "tsd3pl",
	Short:   "tsd3pl - internal issue tracking service",
	Long:    "Issue tracking service for the 3PL warehouse: issue submission, triage, downtime tracking, and scheduled database backups.",
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the database and upload it to object storage",
	RunE:  runBackup,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tsd3pl %s\n", rootCmd.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if err := config.Load(configPath); err != nil {
		return nil, err
	}
	return config.Get(), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	issueRepo := repository.NewIssueRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	userRepo := repository.NewUserRepository(db)

	provider := notifications.NewSMTPProvider(&cfg.Email)
	notifier := notifications.NewAssignmentNotifier(provider, cfg.App.URL)

	issueService := service.NewIssueService(
		issueRepo, categoryRepo, userRepo, notifier, cfg.Issues.DefaultOwnerID)

	router := api.NewRouter(issueService, categoryRepo, userRepo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewService()
	if cfg.Backup.Enabled {
		store, err := backup.NewS3Store(cfg.Storage)
		if err != nil {
			return err
		}
		runner := backup.NewRunner(cfg.Database, cfg.Backup, store)
		if err := sched.Register("database-backup", cfg.Backup.Schedule, runner.Run); err != nil {
			return err
		}
	}
	sched.Start(ctx)
	defer sched.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := backup.NewS3Store(cfg.Storage)
	if err != nil {
		return err
	}
	runner := backup.NewRunner(cfg.Database, cfg.Backup, store)
	return runner.Run(cmd.Context())
}
