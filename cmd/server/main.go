package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/mcat-prep/backend/internal/config"
	"github.com/mcat-prep/backend/internal/database"
	"github.com/mcat-prep/backend/internal/generator"
	"github.com/mcat-prep/backend/internal/logging"
	"github.com/mcat-prep/backend/internal/metrics"
	"github.com/mcat-prep/backend/internal/questions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log := logging.NewLogger("mcat-api", cfg.LogLevel)

	if err := cfg.LLM.Validate(); err != nil {
		log.WithError(err).Fatal("invalid LLM configuration")
	}

	// Initialize database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(reg)

	// Generator
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llm, err := generator.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.WithError(err).Fatal("failed to create LLM client")
	}
	gen := generator.NewGenerator(llm, generator.Options{
		Provider: cfg.LLM.Provider,
		Timeout:  cfg.LLM.Timeout,
		Logger:   log,
		Metrics:  m,
	})

	// Initialize handlers
	store := questions.NewStore(db)
	service := questions.NewService(store, gen, log)
	handler := questions.NewHandler(service, log)

	// Setup router
	r := mux.NewRouter()
	r.Use(logging.RequestLogger(log), m.Middleware)
	handler.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", logging.RequestIDHeader},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.LLM.Timeout + 30*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":     cfg.Port,
			"provider": cfg.LLM.Provider,
			"model":    gen.ModelName(),
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
