package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Kwixotic/edgebridge"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	bind := flag.String("bind", "", "address to bind to")
	build := flag.String("build", "", "compiled application entry module")
	public := flag.String("public", "", "static asset directory")
	prefix := flag.String("prefix", "", "static asset URL prefix")
	mode := flag.String("mode", "", "runtime mode (defaults to EDGEBRIDGE_MODE or production)")
	flag.Parse()

	// A .env alongside the binary feeds the application's environment
	// accessor; absence is fine.
	_ = godotenv.Load()

	cfg := defaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = loadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}
	}
	if *bind != "" {
		cfg.Bind = *bind
	}
	if *build != "" {
		cfg.Build = *build
	}
	if *public != "" {
		cfg.Public = *public
	}
	if *prefix != "" {
		cfg.Prefix = *prefix
	}
	if *mode != "" {
		cfg.Mode = *mode
	}

	logger, err := newLogger(cfg.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %s\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	opts := []edgebridge.Option{
		edgebridge.WithLogger(logger),
		edgebridge.WithBuildPath(cfg.Build),
		edgebridge.WithAssetDir(cfg.Public),
		edgebridge.WithAssetPrefix(cfg.Prefix),
		edgebridge.WithCache(edgebridge.NewMemoryCache()),
	}
	if cfg.Mode != "" {
		opts = append(opts, edgebridge.WithMode(cfg.Mode))
	}
	bridge := edgebridge.New(opts...)

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.PathPrefix("/").Handler(instrument(bridge))

	logger.Info("listening",
		zap.String("addr", cfg.Bind),
		zap.String("build", cfg.Build),
		zap.String("public", cfg.Public),
	)
	if err := http.ListenAndServe(cfg.Bind, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
