package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/framecast/editor-agent/internal/api"
	"github.com/framecast/editor-agent/internal/config"
	"github.com/framecast/editor-agent/internal/editor"
	"github.com/framecast/editor-agent/internal/playback"
	"github.com/framecast/editor-agent/internal/project"
	"github.com/framecast/editor-agent/internal/ui"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var headless bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor agent: HTTP API, autosave and export runner, tray",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, headless, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", false, "do not start the system tray (overrides config)")
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions, headlessFlag bool, out io.Writer) error {
	startTime := time.Now()

	st, err := openStore(opts, "")
	if err != nil {
		return err
	}
	defer st.Close()

	cfg, logger := st.cfg, st.logger
	logger.Info("starting framecast editor agent", "version", config.Version, "data_dir", cfg.DataDir())

	if err := os.MkdirAll(cfg.ExportDir(), 0755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}

	authToken, err := ensureAuthToken(ctx, st.repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}
	printBanner(out, cfg, authToken)

	sessions := editor.NewManager(st.service, editor.SnapSettings{
		Step:      cfg.SnapStep(),
		Threshold: cfg.SnapThreshold(),
	}, logger)
	runner := editor.NewRunner(sessions, st.service, cfg.ExportDir(), cfg.AutosaveInterval(), logger)

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		Version:        config.Version,
		Projects:       st.service,
		Repository:     st.repo,
		Sessions:       sessions,
		Runner:         runner,
		PlaybackServer: playback.NewServer(logger),
		Logger:         logger,
		StartTime:      startTime,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tray *ui.Tray
	if cfg.Headless() || headlessFlag {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray = ui.NewTray(ui.TrayConfig{
			Sessions: sessions,
			Runner:   runner,
			Logger:   logger,
			OnQuit:   cancel,
		})
		go tray.Run()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		runner.Start(gctx)
		return nil
	})
	g.Go(func() error {
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("initiating graceful shutdown")
		if tray != nil {
			tray.Quit()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown HTTP server", "error", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}

func printBanner(out io.Writer, cfg config.Config, authToken string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "╔═══════════════════════════════════════════════════════════╗")
	fmt.Fprintf(out, "║  FRAMECAST EDITOR AGENT %-33s ║\n", "v"+config.Version)
	fmt.Fprintln(out, "╠═══════════════════════════════════════════════════════════╣")
	fmt.Fprintf(out, "║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Fprintf(out, "║  Auth Token: %-45s ║\n", authToken)
	fmt.Fprintf(out, "║  Data Dir:   %-45s ║\n", truncate(cfg.DataDir(), 45))
	fmt.Fprintln(out, "╚═══════════════════════════════════════════════════════════╝")
	fmt.Fprintln(out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n+3:]
}

// ensureAuthToken returns the stored API token, generating one on first
// start.
func ensureAuthToken(ctx context.Context, repo project.Repository) (string, error) {
	existing, err := repo.GetConfig(ctx, api.AuthTokenKey)
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, api.AuthTokenKey, token); err != nil {
		return "", err
	}
	return token, nil
}
