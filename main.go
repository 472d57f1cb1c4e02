package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kotrzina/knue-meals/pkg/config"
	"github.com/kotrzina/knue-meals/pkg/fetch"
	"github.com/kotrzina/knue-meals/pkg/menu"
	"github.com/kotrzina/knue-meals/pkg/prometheus"
	"github.com/sirupsen/logrus"
)

func main() {
	// for development purposes
	// we don't care about errors here
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds everything the commands share.
type app struct {
	config  *config.Config
	logger  *logrus.Logger
	monitor *prometheus.Monitor
	service *menu.Service
}

func newApp() (*app, error) {
	conf := config.NewConfig()
	logger := createLogger(conf.Debug)
	mon := prometheus.New()

	catalog, err := menu.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("could not load source catalog: %w", err)
	}
	catalog = catalog.WithURLs(conf.SadoURL, conf.StaffURL).WithUserAgent(conf.UserAgent)

	fetcher := fetch.NewHTTPFetcher(fetch.Options{
		ConnectTimeout: conf.ConnectTimeout,
		ReadTimeout:    conf.ReadTimeout,
	})

	return &app{
		config:  conf,
		logger:  logger,
		monitor: mon,
		service: menu.NewService(catalog, fetcher, mon, logger),
	}, nil
}

func createLogger(debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger
}
