package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/framecast/editor-agent/internal/project"
	"github.com/framecast/editor-agent/internal/timeline"
)

func newProjectsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(opts, "warn")
			if err != nil {
				return err
			}
			defer st.Close()

			projects, err := st.service.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			return writeProjectTable(cmd.OutOrStdout(), projects, time.Now())
		},
	}
}

func writeProjectTable(out io.Writer, projects []*project.Project, now time.Time) error {
	if len(projects) == 0 {
		_, err := fmt.Fprintln(out, "no projects")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSCENES\tDURATION\tSYNC\tUPDATED")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			p.ID,
			p.Title,
			len(p.Scenes),
			formatSeconds(timeline.TimelineDuration(p.Scenes)),
			p.SyncStatus,
			humanize.RelTime(p.UpdatedAt, now, "ago", "from now"),
		)
	}
	return tw.Flush()
}

// formatSeconds renders a timeline length as m:ss.f.
func formatSeconds(s float64) string {
	d := time.Duration(s * float64(time.Second)).Round(100 * time.Millisecond)
	m := int(d / time.Minute)
	rest := (d % time.Minute).Seconds()
	return fmt.Sprintf("%d:%04.1f", m, rest)
}
