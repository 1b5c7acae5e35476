package main

import (
	"flag"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/editathons/internal/app"
	"github.com/shrimpsizemoose/editathons/internal/handlers"
	"github.com/shrimpsizemoose/editathons/internal/web"
)

func main() {
	var (
		configPath = flag.String("config", "config.toml", "Path to config file")
		migrate    = flag.Bool("migrate", true, "Apply migrations before serving")
	)
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	if *migrate {
		if err := service.Store.ApplyMigrations(service.Config.Database.MigrationsDir); err != nil {
			logger.Error.Fatalf("Failed to apply migrations: %v", err)
		}
	}

	renderer, err := web.NewRenderer(service.Config.Display.DateFormat)
	if err != nil {
		logger.Error.Fatalf("Failed to load templates: %v", err)
	}

	router := handlers.NewRouter(service, renderer)

	logger.Info.Printf("Starting editathons server on %s", service.Config.Server.Port)
	if service.Config.Metrics.Enabled {
		logger.Debug.Printf("Exposing metrics on %s", service.Config.Metrics.Path)
	}
	if err := http.ListenAndServe(service.Config.Server.Port, router); err != nil {
		logger.Error.Fatalf("Editathons server failed: %v", err)
	}
}
