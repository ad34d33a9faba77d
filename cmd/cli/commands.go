package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"reactorviz/adapters/plotly"
	"reactorviz/adapters/static"
	"reactorviz/app"
	"reactorviz/domain/reactor"
	"reactorviz/internal/errors"
	"reactorviz/ui"

	"github.com/spf13/cobra"
)

func newBucketsCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "buckets [metric...]",
		Short: "Count reactors per age group",
		Long: `Count reactors per age group for the given metrics, or for every
configured metric when none is named.

Metrics: closing_age, construction_time, construction_aborted_time, operational_age

Example: reactorviz buckets closing_age --data kraftwerke.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(flags)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			metrics := c.Buckets.Metrics()
			if len(args) > 0 {
				metrics = nil
				for _, name := range args {
					m, err := reactor.ParseMetric(name)
					if err != nil {
						return err
					}
					metrics = append(metrics, m)
				}
			}

			var charts []*app.BucketChart
			for _, m := range metrics {
				chart, err := c.Buckets.Build(cmd.Context(), m)
				if err != nil {
					return err
				}
				charts = append(charts, chart)
			}

			if asJSON {
				return printJSON(charts)
			}
			for _, chart := range charts {
				h := chart.Histogram
				fmt.Printf("%s (%d reactors, mean %.1f years)\n", chart.Donut.Title, h.Total, h.Mean)
				for i, label := range h.Scheme.Labels {
					fmt.Printf("  %-26s %4d  %5.1f%%\n", label, h.Counts[i], 100*h.Proportion(i))
				}
				if h.Skipped > 0 {
					fmt.Printf("  %-26s %4d\n", "outside every group", h.Skipped)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print histograms and figures as JSON")
	return cmd
}

func newTimelineCmd(flags *globalFlags) *cobra.Command {
	var start, end int
	var dashboard bool
	var out string

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Build the commissioning/decommissioning timeline",
		Long: `Build the bubble timeline for a year window and print its summary.
With --out the chart is written as HTML or as an image, chosen by extension.

Example: reactorviz timeline --start 1990 --end 2023 --out timeline.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(flags)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			window := c.Timeline.DefaultWindow()
			if cmd.Flags().Changed("start") {
				window.Start = start
			}
			if cmd.Flags().Changed("end") {
				window.End = end
			}

			chart, err := c.Timeline.Build(cmd.Context(), app.TimelineRequest{Window: window, Dashboard: dashboard})
			if err != nil {
				return err
			}

			fmt.Printf("%d to %d: %d reactor units in %d countries\n",
				window.Start, window.End, chart.Layout.Count, len(chart.Layout.Series))
			fmt.Printf("y axis %.0f to %.0f years\n", chart.Layout.YMin, chart.Layout.YMax)
			if r := chart.Layout.Regression; r != nil {
				fmt.Printf("age at decommissioning trend: %+.2f years per year", r.AgeTrend())
				if r.Fit.PValue != nil {
					fmt.Printf(" (p = %.3f)", *r.Fit.PValue)
				}
				fmt.Println()
			}

			if out == "" {
				return nil
			}
			if strings.EqualFold(filepath.Ext(out), ".html") {
				return plotly.SaveHTML(out, "Timeline", chart.Figure)
			}
			renderer := static.NewRenderer()
			p, err := renderer.Timeline(chart.Layout, static.Captions{
				Title:  chart.Labels.Title,
				XTitle: chart.Labels.XTitle,
				YTitle: chart.Labels.YTitle,
			})
			if err != nil {
				return errors.RenderError("timeline", err)
			}
			return renderer.Save(p, out)
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "First year of the window")
	cmd.Flags().IntVar(&end, "end", 0, "Last year of the window")
	cmd.Flags().BoolVar(&dashboard, "dashboard", false, "Use relative bubble sizes and a tight x axis")
	cmd.Flags().StringVar(&out, "out", "", "Write the chart to this file (.html, .png, .svg, .pdf)")
	return cmd
}

func newRenderCmd(flags *globalFlags) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render every chart to HTML and images",
		Long: `Render every bucket chart and the timeline to HTML pages and images
(IMAGE_FORMAT) and write a manifest.json describing the run.

Example: reactorviz render --out charts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(flags)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			if dir == "" {
				dir = c.Config.Output.Dir
			}
			manifest, err := c.Render.RenderAll(cmd.Context(), dir)
			if err != nil {
				return err
			}
			for _, a := range manifest.Artifacts {
				fmt.Println(a.Path)
			}
			fmt.Printf("run %s: %d files\n", manifest.ID, len(manifest.Artifacts))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "out", "", "Output directory; defaults to OUTPUT_DIR")
	return cmd
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reactors, derived metrics and age groups to a workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(flags)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			if out == "" {
				out = filepath.Join(c.Config.Output.Dir, "reactors.xlsx")
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			if err := c.Export.Export(cmd.Context(), out); err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Workbook to write; defaults to OUTPUT_DIR/reactors.xlsx")
	return cmd
}

func newReportCmd(flags *globalFlags) *cobra.Command {
	var asHTML bool
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a markdown summary of the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(flags)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			var body []byte
			if asHTML {
				body, err = c.Report.HTML(cmd.Context())
			} else {
				var md string
				md, err = c.Report.Markdown(cmd.Context())
				body = []byte(md)
			}
			if err != nil {
				return err
			}

			if out == "" {
				_, err = os.Stdout.Write(body)
				return err
			}
			return os.WriteFile(out, body, 0o644)
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Render the report to HTML")
	cmd.Flags().StringVar(&out, "out", "", "Write to this file instead of stdout")
	return cmd
}

func newPublishCmd(flags *globalFlags) *cobra.Command {
	var latest bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Store the dataset and its metrics as an import run in DATABASE_URL",
		Long: `Store every reactor with its derived metrics as one import run.
DATABASE_URL selects the store: postgres://... or sqlite://path.

Example: DATABASE_URL=sqlite://runs.db reactorviz publish`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(flags)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			if err := withDatabase(cmd.Context(), c); err != nil {
				return err
			}

			if latest {
				run, entries, err := c.Publish.Latest(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("run %s: %d reactors from %s at %s\n",
					run.ID, len(entries), run.Source, run.CreatedAt.Format(time.RFC3339))
				return nil
			}

			run, err := c.Publish.Publish(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("published run %s with %d reactors\n", run.ID, run.Count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&latest, "latest", false, "Show the newest run instead of publishing")
	return cmd
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(flags)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			if err := withDatabase(cmd.Context(), c); err != nil {
				return err
			}
			if port > 0 {
				c.Config.Server.Port = strconv.Itoa(port)
			}

			server, err := ui.NewApp(ui.Config{
				Port:    c.Config.Server.Port,
				GinMode: c.Config.Server.GinMode,
			}, c.UIServices(), c.Logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() { errc <- server.Start() }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on; overrides PORT")
	return cmd
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
