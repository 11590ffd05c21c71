package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/monument-map/internal/api"
)

var (
	servePort      int
	serveFromFiles bool
	serveSources   sourceFlags
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the map API server",
	Long:  "Loads the dataset and serves /api/options, /api/map, /api/legend and /api/ranking. Send SIGHUP to reload the dataset.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		srvAPI := newAPIServer()
		ds, err := loadDataset(ctx, serveFromFiles, serveSources)
		if err != nil {
			return eris.Wrap(err, "serve: load dataset")
		}
		srvAPI.SetDataset(ds)

		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		go reloadOnSignal(ctx, hup, srvAPI)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           srvAPI.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newAPIServer() *api.Server {
	return api.New(api.Options{
		Palette:      paletteFromConfig(cfg.Map),
		Tiles:        tileLayerFromConfig(cfg.Map),
		LegendTitle:  cfg.Map.LegendTitle,
		CORSOrigins:  cfg.Server.CORSOrigins,
		RateLimit:    cfg.Server.RateLimit,
		RateBurst:    cfg.Server.RateBurst,
		CacheEntries: cfg.Server.CacheEntries,
		CacheTTL:     cfg.Server.CacheTTL(),
	})
}

// reloadOnSignal swaps in a freshly loaded dataset on every signal. A failed
// reload keeps the current dataset.
func reloadOnSignal(ctx context.Context, sig <-chan os.Signal, srv *api.Server) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			zap.L().Info("reloading dataset")
			ds, err := loadDataset(ctx, serveFromFiles, serveSources)
			if err != nil {
				zap.L().Error("dataset reload failed", zap.Error(err))
				continue
			}
			srv.SetDataset(ds)
		}
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveFromFiles, "from-files", false, "read the source files instead of the latest stored import")
	serveCmd.Flags().StringVar(&serveSources.regions, "regions", "", "regions GeoJSON, shapefile or ZIP (default from config)")
	serveCmd.Flags().StringVar(&serveSources.monuments, "monuments", "", "monuments GeoJSON (default from config)")
	serveCmd.Flags().StringVar(&serveSources.mapping, "mapping", "", "category mapping CSV, XLSX or YAML (default from config)")
	rootCmd.AddCommand(serveCmd)
}
