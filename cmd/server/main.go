package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"location-distance-service/internal/adapters/cache"
	"location-distance-service/internal/adapters/mapbox"
	"location-distance-service/internal/adapters/repositories"
	"location-distance-service/internal/api"
	"location-distance-service/internal/config"
	"location-distance-service/internal/platform/db"
	"location-distance-service/internal/ports"
	"location-distance-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, Mapbox, Redis) behind ports and starts
// the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/locations.json")
	port := config.Get("PORT", "8080")

	// An empty token is allowed at startup: pairs with stored coordinates
	// resolve without the provider, and the token can arrive later via
	// re-deploy. Provider-backed calls fail with a configuration error
	// until then.
	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	if mapboxToken == "" {
		log.Println("MAPBOX_TOKEN is empty: geocoding and routing are disabled until configured")
	}

	sqldb, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sqldb.Close()

	if err := initAndSeed(sqldb, seedPath); err != nil {
		log.Fatal(err)
	}

	client := mapbox.NewClient(mapboxToken)

	repo := repositories.NewSqliteLocationRepository(sqldb)
	geocodeCache := cache.NewSqliteGeocodeCache(sqldb)
	distanceStore := cache.NewSqliteDistanceStore(sqldb)
	geocoder := services.NewCachedGeocoder(client, geocodeCache)

	distances := services.NewDistanceService(distanceStore, geocoder, client)
	recalc := services.NewRecalculator(repo, distances)
	locations := services.NewLocationService(repo, recalc)

	// The aggregate route cache is optional; without Redis every multi-stop
	// request is stitched from scratch.
	var routeCache ports.RouteCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		routeCache = cache.NewRedisRouteCache(rdb)
		log.Printf("Route cache enabled addr=%s", addr)
	}
	aggregator := services.NewRouteAggregator(repo, distances, client, routeCache)

	router := api.NewRouter(sqldb, repo, locations, distances, aggregator)

	// Timeouts are tuned for cold-cache distance resolution (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func initAndSeed(sqldb *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(sqldb); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); os.IsNotExist(err) {
		log.Printf("Seed file %s not found, skipping seed", seedPath)
		return nil
	}

	if err := repositories.SeedFromJSON(sqldb, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
