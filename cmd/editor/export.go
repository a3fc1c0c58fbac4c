package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/framecast/editor-agent/internal/export"
	"github.com/framecast/editor-agent/internal/project"
)

const exportConcurrency = 4

type exportOptions struct {
	format    string
	outDir    string
	frameRate float64
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	eo := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export <project-id>...",
		Short: "Write EDL or YAML cut lists for stored projects",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(opts, "warn")
			if err != nil {
				return err
			}
			defer st.Close()

			if eo.outDir == "" {
				eo.outDir = st.cfg.ExportDir()
			}
			if err := os.MkdirAll(eo.outDir, 0755); err != nil {
				return fmt.Errorf("failed to create output dir: %w", err)
			}

			exporter := export.NewExporter(st.service, st.logger)
			results, err := exportProjects(cmd.Context(), st.service, exporter, args, *eo)
			if err != nil {
				return err
			}
			return writeExportResults(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVar(&eo.format, "format", export.FormatEDL, "export format: edl or yaml")
	cmd.Flags().StringVar(&eo.outDir, "out", "", "output directory (default <data_dir>/exports)")
	cmd.Flags().Float64Var(&eo.frameRate, "frame-rate", export.DefaultFrameRate, "timecode frame rate")
	return cmd
}

// exportProjects writes one file per project id, a few at a time. Results
// keep the order of ids. The first failure cancels the rest.
func exportProjects(ctx context.Context, svc *project.Service, exporter *export.Exporter, ids []string, eo exportOptions) ([]*export.Result, error) {
	results := make([]*export.Result, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exportConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			p, err := svc.LoadProject(gctx, id)
			if err != nil {
				return fmt.Errorf("project %s: %w", id, err)
			}
			res, err := exporter.Write(gctx, export.Request{
				Title:     p.Title,
				Format:    eo.format,
				FrameRate: eo.frameRate,
				OutputDir: eo.outDir,
				State:     p.Timeline(),
			})
			if err != nil {
				return fmt.Errorf("project %s: %w", id, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeExportResults(out io.Writer, results []*export.Result) error {
	for _, res := range results {
		line := fmt.Sprintf("%s  %s clips  %s", res.OutputPath, humanize.Comma(int64(res.ClipCount)), formatSeconds(res.Duration))
		if len(res.UnresolvedClips) > 0 {
			line += fmt.Sprintf("  (unresolved: %s)", strings.Join(res.UnresolvedClips, ", "))
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
