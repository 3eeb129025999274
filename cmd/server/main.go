package main

import (
	"log"

	"harvest-analytics-api/internal/app"
	"harvest-analytics-api/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	app, err := app.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize app:", err)
	}
	defer app.Close()

	log.Printf("Starting server on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
