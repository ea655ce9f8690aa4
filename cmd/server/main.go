package main

import (
	"context"
	"database/sql"
	"earthwork-route-service/internal/adapters/cache"
	"earthwork-route-service/internal/adapters/lkh"
	"earthwork-route-service/internal/adapters/repositories"
	"earthwork-route-service/internal/api"
	"earthwork-route-service/internal/api/handlers"
	"earthwork-route-service/internal/config"
	"earthwork-route-service/internal/platform/db"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, LKH) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	deps := api.Deps{
		Workers: cfg.SolverWorkers,
		Checks:  map[string]handlers.HealthCheck{},
	}

	// Without a database the service still solves posted fields, but
	// keeps nothing.
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		if err := initSchema(conn); err != nil {
			log.Fatal(err)
		}

		deps.Fields = repositories.NewPostgresFieldRepository(conn)
		deps.Routes = repositories.NewPostgresRouteRepository(conn)
		deps.Cache = cache.NewSQLRouteCache(conn, cfg.RouteCacheTTL)
		deps.Checks["postgres"] = conn.PingContext
	} else {
		log.Println("DATABASE_URL not set: fields and routes are not stored")
	}

	// Redis takes over route caching from Postgres when configured.
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()

		deps.Cache = cache.NewRedisRouteCache(client, cfg.RouteCacheTTL)
		deps.Checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	if cfg.LKHBin != "" {
		deps.Tours = lkh.NewTourSolver(cfg.LKHBin, cfg.LKHWorkDir)
	}

	router := api.NewRouter(deps)

	// Timeouts are tuned for meta-solver runs on large fields.
	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      300 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func initSchema(conn *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return repositories.InitSchema(ctx, conn)
}
