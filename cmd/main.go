// Package main is the entry point for the bundle-service application.
//
// @title           Bundle Service API
// @version         1.0.0
// @description     Product bundle pricing and cart integrity API.
//
//	Bundles are added to the session cart as grouped lines whose prices sum to the bundle price.
//
// @termsOfService  http://swagger.io/terms/
//
// @contact.name   API Support
// @contact.email  support@example.com
// @contact.url    https://github.com/guttosm/bundle-service
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
// @description                 Admin API key for the bundle and catalog authoring endpoints.
//
// @tag.name        Bundles
// @tag.description Bundle add-to-cart forms
//
// @tag.name        Cart
// @tag.description Session cart operations
//
// @tag.name        Orders
// @tag.description Checkout and placed orders
//
// @tag.name        Admin
// @tag.description Bundle and catalog authoring
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	_ "github.com/guttosm/bundle-service/docs" // swagger docs

	"github.com/guttosm/bundle-service/config"
	"github.com/guttosm/bundle-service/internal/app"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	router, cleanup := app.InitializeApp(cfg)
	server := app.NewServer(router, cfg.Server.Port, app.WithShutdownHook(cleanup))

	if err := server.Run(); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
