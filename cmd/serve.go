package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/consultores-turismo/str-insights/internal/export"
	"github.com/consultores-turismo/str-insights/internal/metrics"
	"github.com/consultores-turismo/str-insights/internal/normalize"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initDataEnv(ctx)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env, cfg.Server.AllowedOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *dataEnv, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/cities", env.handleCities)
		r.Get("/neighborhoods", env.handleNeighborhoods)
		r.Get("/metrics", env.handleMetrics)
		r.Get("/centroids", env.handleCentroids)
		r.Get("/match", env.handleMatch)
		r.Get("/export.csv", env.handleExportCSV)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (e *dataEnv) handleCities(w http.ResponseWriter, _ *http.Request) {
	type cityRow struct {
		City               string  `json:"city"`
		TotalListings      int     `json:"total_listings"`
		BarriosCount       int     `json:"barrios_count"`
		RatioEntireHomePct float64 `json:"ratio_entire_home_pct"`
		MeanPrice          float64 `json:"mean_price"`
		EstOccupancyPct    float64 `json:"est_occupancy_pct"`
		Level              string  `json:"level"`
		Action             string  `json:"action"`
	}
	out := make([]cityRow, 0, len(e.Result.Cities))
	for _, c := range e.Result.Cities {
		rec := metrics.Recommend(c)
		out = append(out, cityRow{
			City:               c.City,
			TotalListings:      c.TotalListings,
			BarriosCount:       c.BarriosCount,
			RatioEntireHomePct: c.RatioEntireHomePct,
			MeanPrice:          c.MeanPrice,
			EstOccupancyPct:    c.EstOccupancyPct,
			Level:              string(rec.Level),
			Action:             rec.Action,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (e *dataEnv) handleNeighborhoods(w http.ResponseWriter, r *http.Request) {
	rows := export.Apply(e.Result.Neighborhoods, export.Filter{
		City: r.URL.Query().Get("city"),
		Tier: metrics.Tier(r.URL.Query().Get("tier")),
	})
	writeJSON(w, http.StatusOK, rows)
}

func (e *dataEnv) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var ratios []float64
	for _, h := range e.Result.Neighborhoods {
		ratios = append(ratios, h.RatioEntireHomePct)
	}

	type cityIndexes struct {
		Concentration float64  `json:"concentration_index"`
		Accessibility float64  `json:"accessibility_index"`
		Hotspots      []string `json:"hotspots,omitempty"`
	}
	perCity := map[string]cityIndexes{}
	for _, c := range e.Result.Cities {
		hoods := e.Result.ForCity(c.City)
		perCity[c.City] = cityIndexes{
			Concentration: metrics.ConcentrationIndex(hoods),
			Accessibility: e.Metrics.AccessibilityIndex(c.City, c.MeanPrice),
			Hotspots:      metrics.HighConcentration(hoods),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary":         e.Summary,
		"tier_counts":     metrics.CountTiers(ratios),
		"city_indexes":    perCity,
		"recommendations": metrics.RecommendAll(e.Result.Cities),
	})
}

func (e *dataEnv) handleCentroids(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}
	writeJSON(w, http.StatusOK, e.placements(city))
}

func (e *dataEnv) handleMatch(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeJSON(w, http.StatusOK, e.Reports)
		return
	}
	canonical := normalize.Name(city)
	for _, report := range e.Reports {
		if normalize.Name(report.City) == canonical {
			writeJSON(w, http.StatusOK, report)
			return
		}
	}
	writeError(w, http.StatusNotFound, "unknown city")
}

func (e *dataEnv) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var minRatio float64
	if v := r.URL.Query().Get("min_ratio"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_ratio")
			return
		}
		minRatio = parsed
	}

	rows := export.Apply(e.Result.Neighborhoods, export.Filter{
		City:     r.URL.Query().Get("city"),
		MinRatio: minRatio,
		Tier:     metrics.Tier(r.URL.Query().Get("tier")),
	})

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="neighborhoods.csv"`)
	if err := export.Write(w, rows); err != nil {
		zap.L().Error("export csv", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
