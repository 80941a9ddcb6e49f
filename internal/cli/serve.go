package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autocaps/renderd/internal/config"
	"github.com/autocaps/renderd/internal/storage"
	"github.com/autocaps/renderd/internal/store"
	"github.com/autocaps/renderd/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the render worker HTTP server",
	Long: `Start the worker and accept authenticated render jobs over HTTP.

Configuration comes from the environment (a .env file is honored):
WORKER_JWT_SECRET and DATABASE_URL are required; PORT defaults to 8787.

Examples:
  renderd serve
  renderd serve --verbose`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	objects, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}
	defer func() {
		_ = objects.Close()
	}()

	orch := worker.NewOrchestrator(
		store.New(pool, logger),
		objects,
		logger,
		worker.Options{
			UploadsBucket:   cfg.UploadsBucket,
			CaptionsBucket:  cfg.CaptionsBucket,
			RendersBucket:   cfg.RendersBucket,
			KaraokeFontPath: cfg.KaraokeFontPath,
		},
	)

	server := worker.NewServer(orch, cfg.WorkerSecret, logger)
	return server.Run(cfg.Port)
}
