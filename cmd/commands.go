package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/researchtrack-backend/internal/app"
	"github.com/yungbote/researchtrack-backend/internal/modules/intake"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

var (
	extractUser string

	rootCmd = &cobra.Command{
		Use:           "researchtrack",
		Short:         "Research program tracker backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API (default)",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the store schema and exit",
		RunE:  runMigrate,
	}

	extractCmd = &cobra.Command{
		Use:   "extract [message]",
		Short: "Extract programs from a message, store them and print the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runExtract,
	}
)

func init() {
	extractCmd.Flags().StringVar(&extractUser, "user", "", "user id the rows are stored for")
	_ = extractCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(serveCmd, migrateCmd, extractCmd)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	a.Start(ctx)
	return a.Run(ctx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	store, err := app.OpenStore(log, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info("Migration complete", "driver", store.Driver())
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		return errors.New("message is empty")
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	res, err := a.Services.Intake.Ingest(ctx, intake.IngestInput{Message: message, UserID: extractUser})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
