package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"log"

	"github.com/Sage-GtHub/neurostate-sub005/config"
	"github.com/Sage-GtHub/neurostate-sub005/gateway"
	"github.com/Sage-GtHub/neurostate-sub005/helpers"
	"github.com/Sage-GtHub/neurostate-sub005/middleware"
	"github.com/Sage-GtHub/neurostate-sub005/realtime"
	"github.com/Sage-GtHub/neurostate-sub005/routes"
	"github.com/Sage-GtHub/neurostate-sub005/services"

	"github.com/gin-gonic/gin"
)

func main() {

	//Connect to mongoDB

	log.Println("Starting application...")

	config.Init()

	key := config.GenerateRandomKey()
	helpers.SetJWTKey(key)

	gw := &gateway.Client{
		APIKey:     os.Getenv("GATEWAY_API_KEY"),
		BaseURL:    os.Getenv("GATEWAY_URL"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}

	bridge := realtime.NewBridge(config.Client.Database("neurostatedb"))
	if err := bridge.Start(context.Background()); err != nil {
		// Change streams need a replica set; local standalone Mongo still
		// serves everything but the live toast channel.
		log.Printf("Realtime bridge disabled: %v", err)
	} else {
		defer bridge.Stop()
	}

	//Init gin router
	r := gin.Default()
	r.Use(middleware.RequestID())
	api := r.Group("/api")
	routes.SetupRoutes(api, routes.Deps{
		Limiter: helpers.NewRateLimiter(),
		Guard:   services.NewGenerationGuard(),
		Gateway: gw,
		Bridge:  bridge,
	})

	// //Start the server
	r.Run(":8080")
	log.Println("Server stopped")
}
