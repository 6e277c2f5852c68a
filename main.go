package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"airbnb-dashboard/config"
	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/storage"
	"airbnb-dashboard/utils"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *utils.Logger

	logLevel  string
	viewsPath string
}

func main() {
	a := &app{logger: utils.NewLogger(utils.LevelInfo)}

	rootCmd := &cobra.Command{
		Use:           "airbnb-dashboard",
		Short:         "Interactive analysis dashboard for short-term rental listings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.cfg = config.Load()
			if a.logLevel != "" {
				a.cfg.LogLevel = a.logLevel
			}
			if a.viewsPath != "" {
				a.cfg.ViewsPath = a.viewsPath
			}
			a.logger = utils.NewLogger(utils.ParseLevel(a.cfg.LogLevel))
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&a.viewsPath, "views", "", "views YAML file (overrides VIEWS_PATH)")

	rootCmd.AddCommand(
		a.serveCmd(),
		a.reportCmd(),
		a.importCmd(),
		a.exportCmd(),
		a.renderCmd(),
		a.snapshotCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var loadErr *storage.LoadError
		if errors.As(err, &loadErr) {
			a.logger.Error("[main] Could not load listings: %v", err)
		} else {
			a.logger.Error("[main] %v", err)
		}
		os.Exit(1)
	}
}

// loadDataset reads every listing from the configured source.
func (a *app) loadDataset(ctx context.Context) (*models.Dataset, error) {
	src, err := storage.Open(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	ds, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Info("[main] Loaded %d listings from %s", ds.Len(), ds.Source)
	return ds, nil
}

// loadSession loads the dataset and view layout into a fresh session.
func (a *app) loadSession(ctx context.Context) (*services.Session, error) {
	dash, err := services.LoadDashboard(a.cfg.ViewsPath)
	if err != nil {
		return nil, err
	}
	ds, err := a.loadDataset(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewSession(ds, dash), nil
}

// viewNames returns args, or every view of the session when args is empty.
func viewNames(s *services.Session, args []string) []string {
	if len(args) > 0 {
		return args
	}
	var names []string
	for _, v := range s.Dashboard().Views() {
		names = append(names, v.Name)
	}
	return names
}

func addSelectionFlags(cmd *cobra.Command, sel *models.FilterSelection) {
	f := cmd.Flags()
	f.StringVar(&sel.Country, "country", "", "only listings in this country")
	f.StringVar(&sel.RoomType, "room-type", "", "only listings with this room type")
	f.StringVar(&sel.Market, "market", "", "only listings in this market")
	f.StringVar(&sel.PropertyType, "property-type", "", "only listings of this property type")
	f.IntVar(&sel.Year, "year", 0, "only listings last reviewed in this year")
}
