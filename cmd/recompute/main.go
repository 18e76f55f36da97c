package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"location-distance-service/internal/adapters/cache"
	"location-distance-service/internal/adapters/mapbox"
	"location-distance-service/internal/adapters/repositories"
	"location-distance-service/internal/config"
	"location-distance-service/internal/domain"
	"location-distance-service/internal/platform/db"
	"location-distance-service/internal/services"
)

// recompute refreshes stored distances in bulk: every distribution center's
// recycling pair, plus (with -all) stored pairs past the staleness threshold.
// Locations run sequentially and failures are logged and skipped, so a
// partial run leaves valid records behind.
func main() {
	force := flag.Bool("force", false, "recompute even when a record already exists")
	all := flag.Bool("all", false, "also refresh stored pairs past the staleness threshold")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	mapboxToken := os.Getenv("MAPBOX_TOKEN")

	sqldb, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sqldb.Close()

	if err := repositories.InitSchema(sqldb); err != nil {
		log.Fatal(err)
	}

	client := mapbox.NewClient(mapboxToken)
	repo := repositories.NewSqliteLocationRepository(sqldb)
	store := cache.NewSqliteDistanceStore(sqldb)
	geocoder := services.NewCachedGeocoder(client, cache.NewSqliteGeocodeCache(sqldb))
	distances := services.NewDistanceService(store, geocoder, client)

	ctx := context.Background()

	processed, skipped := recomputeRecyclingPairs(ctx, repo, distances, *force)

	if *all {
		p, s := refreshStoredPairs(ctx, repo, distances)
		processed += p
		skipped += s
	}

	log.Printf("Done: processed=%d skipped=%d", processed, skipped)
}

func recomputeRecyclingPairs(
	ctx context.Context,
	repo *repositories.SqliteLocationRepository,
	distances *services.DistanceService,
	force bool,
) (processed, skipped int) {
	dcs, err := repo.ListByType(ctx, domain.TypeDistributionCenter)
	if err != nil {
		log.Fatalf("list distribution centers: %v", err)
	}

	for _, dc := range dcs {
		if dc.RecyclingLocationID == nil {
			log.Printf("skip dc=%s: no recycling location assigned", dc.ShortCode)
			skipped++
			continue
		}

		rec, err := repo.Get(ctx, *dc.RecyclingLocationID)
		if err != nil {
			log.Printf("skip dc=%s: load recycling location: %v", dc.ShortCode, err)
			skipped++
			continue
		}

		if _, err := distances.Between(ctx, dc, rec, force); err != nil {
			log.Printf("skip dc=%s recycling=%s: %v", dc.ShortCode, rec.ShortCode, err)
			skipped++
			continue
		}
		processed++
	}

	return processed, skipped
}

func refreshStoredPairs(
	ctx context.Context,
	repo *repositories.SqliteLocationRepository,
	distances *services.DistanceService,
) (processed, skipped int) {
	// Reads never apply staleness, so refreshing a stored pair always means
	// a forced recompute. Only records past the default staleness threshold
	// are touched.
	recs, err := distances.Outdated(ctx, 0)
	if err != nil {
		log.Fatalf("list stored pairs: %v", err)
	}

	for _, rec := range recs {
		from, err := repo.Get(ctx, rec.FromLocationID)
		if err != nil {
			log.Printf("skip pair (%d,%d): %v", rec.FromLocationID, rec.ToLocationID, err)
			skipped++
			continue
		}
		to, err := repo.Get(ctx, rec.ToLocationID)
		if err != nil {
			log.Printf("skip pair (%d,%d): %v", rec.FromLocationID, rec.ToLocationID, err)
			skipped++
			continue
		}

		if _, err := distances.Between(ctx, from, to, true); err != nil {
			log.Printf("skip pair (%d,%d): %v", rec.FromLocationID, rec.ToLocationID, err)
			skipped++
			continue
		}
		processed++
	}

	return processed, skipped
}
