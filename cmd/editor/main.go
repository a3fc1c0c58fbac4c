package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/framecast/editor-agent/internal/config"
	"github.com/framecast/editor-agent/internal/db"
	"github.com/framecast/editor-agent/internal/logging"
	"github.com/framecast/editor-agent/internal/media"
	"github.com/framecast/editor-agent/internal/project"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "framecast-editor",
		Short:         "Local timeline editing agent for Framecast recordings",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $FRAMECAST_CONFIG or <data_dir>/editor.yaml)")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newProjectsCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newVersionCmd())

	return root
}

// store is the persistence stack shared by every subcommand.
type store struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *db.DB
	repo    *project.SQLiteRepository
	service *project.Service
}

func openStore(opts *rootOptions, logLevel string) (*store, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	// One-shot commands pass a level and keep stdout for their own output.
	logger := logging.NewLogger(cfg.LogLevel())
	if logLevel != "" {
		logger = logging.NewLoggerTo(os.Stderr, logLevel)
	}

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := project.NewRepository(database.Conn())
	return &store{
		cfg:     cfg,
		logger:  logger,
		db:      database,
		repo:    repo,
		service: project.NewService(repo, newProber(cfg, logger), logger),
	}, nil
}

func (s *store) Close() error {
	return s.db.Close()
}

// newProber returns nil when ffprobe is missing; registering a recording
// then requires an explicit duration.
func newProber(cfg config.Config, logger *slog.Logger) media.Prober {
	ff, err := media.NewFFprobe(cfg.FFprobePath(), logger)
	if err != nil {
		logger.Warn("ffprobe unavailable, recording durations must be supplied", "error", err)
		return nil
	}
	return media.NewCachedProber(ff, 0)
}
