package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"airbnb-dashboard/chart"
	"airbnb-dashboard/config"
	"airbnb-dashboard/models"
	"airbnb-dashboard/server"
	"airbnb-dashboard/services"
	"airbnb-dashboard/snapshot"
	"airbnb-dashboard/storage"
	"airbnb-dashboard/utils"
)

const sweepInterval = time.Minute

func (a *app) serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a.logger.Info("=== Airbnb dashboard starting ===")

			dash, err := services.LoadDashboard(a.cfg.ViewsPath)
			if err != nil {
				return err
			}
			ds, err := a.loadDataset(ctx)
			if err != nil {
				return err
			}

			if utils.ParseLevel(a.cfg.LogLevel) != utils.LevelDebug {
				gin.SetMode(gin.ReleaseMode)
			}
			if port == 0 {
				port = a.cfg.HTTPPort
			}
			a.logger.Info("Config: source %s | views %d | session ttl %v",
				a.cfg.DataSource, len(dash.Views()), a.cfg.SessionTTL)

			store := services.NewSessionStore(ds, dash, a.cfg.SessionTTL)
			srv := server.New(store, chart.NewPNGRenderer(), a.logger)
			return srv.Run(ctx, fmt.Sprintf(":%d", port), sweepInterval)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides HTTP_PORT)")
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	var sel models.FilterSelection
	cmd := &cobra.Command{
		Use:   "report [view...]",
		Short: "Print dashboard views as a terminal report",
		Long:  "Print the named views, or every view when none is given, for the selection in the flags.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			printer := services.NewReportPrinter(cmd.OutOrStdout())
			for _, view := range viewNames(s, args) {
				res, err := s.Render(view, sel)
				if err != nil {
					return err
				}
				printer.Print(res)
			}
			return nil
		},
	}
	addSelectionFlags(cmd, &sel)
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var to, from string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a listings CSV into PostgreSQL or MongoDB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if from == "" {
				from = a.cfg.DataPath
			}
			ds, err := storage.NewCSVSource(from).Load(ctx)
			if err != nil {
				return err
			}
			a.logger.Info("[import] Read %d listings from %s", ds.Len(), from)

			w, err := storage.OpenWriter(ctx, strings.ToLower(to), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer w.Close()

			if err := w.Write(ctx, ds); err != nil {
				return err
			}
			a.logger.Info("[import] Stored %d listings in %s", ds.Len(), to)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", config.SourcePostgres, "target store: postgres or mongo")
	cmd.Flags().StringVar(&from, "from", "", "CSV file to import (default DATA_PATH)")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var (
		sel models.FilterSelection
		out string
	)
	cmd := &cobra.Command{
		Use:   "export [view...]",
		Short: "Write view aggregates to an .xlsx workbook or .csv file",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openViewWriter(out)
			if err != nil {
				return err
			}

			s, err := a.loadSession(cmd.Context())
			if err != nil {
				w.Close()
				return err
			}
			defer s.Close()

			for _, view := range viewNames(s, args) {
				res, err := s.Render(view, sel)
				if err != nil {
					w.Close()
					return err
				}
				if err := w.WriteView(res); err != nil {
					w.Close()
					return err
				}
				a.logger.Info("[export] %s: %d charts, %d matching listings", view, len(res.Charts), res.Matched)
			}
			if err := w.Close(); err != nil {
				return err
			}
			a.logger.Info("[export] Saved %s", out)
			return nil
		},
	}
	addSelectionFlags(cmd, &sel)
	cmd.Flags().StringVarP(&out, "out", "o", "dashboard.xlsx", "output file; the extension picks the format")
	return cmd
}

func openViewWriter(path string) (storage.ViewWriter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return storage.NewXLSXWriter(path)
	case ".csv":
		return storage.NewCSVWriter(path)
	}
	return nil, fmt.Errorf("export: unsupported output %q, want .xlsx or .csv", path)
}

func (a *app) renderCmd() *cobra.Command {
	var (
		sel models.FilterSelection
		dir string
	)
	cmd := &cobra.Command{
		Use:   "render [view...]",
		Short: "Draw the charts of views as PNG files",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("render: create %s: %w", dir, err)
			}

			renderer := chart.NewPNGRenderer()
			pool := utils.NewWorkerPool(a.cfg.MaxConcurrency, 0)
			written := 0
			for _, view := range viewNames(s, args) {
				res, err := s.Render(view, sel)
				if err != nil {
					return err
				}
				for _, c := range res.Charts {
					if !renderer.Supports(c.Kind) {
						a.logger.Debug("[render] Skipping %s/%s (%s)", view, c.ID, c.Kind)
						continue
					}
					path := filepath.Join(dir, view+"_"+c.ID+".png")
					written++
					pool.Submit(func() error {
						return writeChart(renderer, c, path)
					})
				}
			}

			errs := pool.Wait()
			for _, err := range errs {
				a.logger.Error("[render] %v", err)
			}
			if len(errs) > 0 {
				return fmt.Errorf("render: %d of %d charts failed", len(errs), written)
			}
			a.logger.Info("[render] Wrote %d charts to %s", written, dir)
			return nil
		},
	}
	addSelectionFlags(cmd, &sel)
	cmd.Flags().StringVarP(&dir, "dir", "d", "charts", "output directory")
	return cmd
}

func writeChart(r chart.Renderer, c *models.Chart, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create %s: %w", path, err)
	}
	if err := r.Render(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) snapshotCmd() *cobra.Command {
	var (
		sel     models.FilterSelection
		baseURL string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "snapshot <view>",
		Short: "Screenshot a view from a running dashboard with headless Chrome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view := args[0]
			if baseURL == "" {
				baseURL = fmt.Sprintf("http://localhost:%d", a.cfg.HTTPPort)
			}
			pageURL, err := snapshot.PageURL(baseURL, view, sel)
			if err != nil {
				return err
			}
			if out == "" {
				out = snapshot.OutputName(view, sel)
			}

			capturer := snapshot.New(snapshot.Options{
				ChromeBin: a.cfg.ChromeBin,
				Logger:    a.logger,
				Retry: &utils.RetryConfig{
					MaxAttempts: a.cfg.MaxRetries,
					BaseDelay:   2 * time.Second,
					Logger:      a.logger,
				},
			})
			a.logger.Info("[snapshot] Capturing %s at %s", pageURL, capturer.Dimensions())
			png, err := capturer.Capture(cmd.Context(), pageURL)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return fmt.Errorf("snapshot: write %s: %w", out, err)
			}
			a.logger.Info("[snapshot] Saved %s", out)
			return nil
		},
	}
	addSelectionFlags(cmd, &sel)
	cmd.Flags().StringVar(&baseURL, "url", "", "dashboard base URL (default http://localhost:HTTP_PORT)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PNG (default derived from the view and selection)")
	return cmd
}
