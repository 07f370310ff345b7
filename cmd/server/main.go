package main

import (
	"database/sql"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"BookShelf/internal/app"
	"BookShelf/internal/catalog"
	"BookShelf/internal/customer"
	"BookShelf/pkg/kit"
)

func main() {
	service := "bookshelf"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "5001")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	books, users := buildStores(log)

	sessions := customer.NewSessions()
	defer sessions.Stop()

	bookSrv := &catalog.Server{Store: books, Log: log}
	custSrv := &customer.Server{
		Log:      log,
		Users:    users,
		Catalog:  books,
		Sessions: sessions,
		JWT:      customer.NewTokenMaker(jwtSecret),
	}

	reg := prometheus.NewRegistry()
	h := app.NewHandler(bookSrv, custSrv, app.Deps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func buildStores(log *zap.Logger) (catalog.Store, customer.Store) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			log.Fatal("open database", zap.Error(err))
		}
		return catalog.NewPostgresStore(db), customer.NewPostgresStore(db)
	}

	// In-memory stores simulate the database round trip with fixed delays.
	catalogDelay := getdur("CATALOG_READ_DELAY", 1*time.Second, log)
	credentialDelay := getdur("CREDENTIAL_CHECK_DELAY", 300*time.Millisecond, log)

	return catalog.NewMemStore(catalogDelay), customer.NewMemStore(credentialDelay)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getdur(k string, def time.Duration, log *zap.Logger) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn("bad duration, using default",
			zap.String("key", k), zap.String("value", v), zap.Duration("default", def))
		return def
	}
	return d
}
