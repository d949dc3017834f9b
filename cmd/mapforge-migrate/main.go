// mapforge-migrate copies a mapforge blob store from SQLite to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/mapforge-migrate \
//	    -sqlite data/mapforge.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user mapforge \
//	    -pg-password mapforge \
//	    -pg-database mapforge
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/pixelatelabs/mapforge/internal/store"
)

func main() {
	sqlitePath := flag.String("sqlite", "data/mapforge.db", "Path to SQLite database")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "mapforge", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "mapforge", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "mapforge", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("SQLite to PostgreSQL Migration Tool")
	log.Println("====================================")

	log.Printf("Opening SQLite store: %s", *sqlitePath)
	src, err := store.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite store: %v", err)
	}
	defer src.Close()

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		*pgHost, *pgPort, *pgUser, *pgPassword, *pgDatabase, *pgSSLMode,
	)

	log.Printf("Opening PostgreSQL store: %s@%s:%d/%s", *pgUser, *pgHost, *pgPort, *pgDatabase)
	dst, err := store.OpenPostgres(dsn)
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL store: %v", err)
	}
	defer dst.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	keys, err := src.List("")
	if err != nil {
		log.Fatalf("Failed to list source keys: %v", err)
	}
	log.Printf("Found %d entries to migrate", len(keys))

	var migrated, skipped int64
	for _, key := range keys {
		data, ok, err := src.Get(key)
		if err != nil {
			log.Fatalf("Failed to read %q: %v", key, err)
		}
		if !ok {
			continue
		}

		// Entries are write-once; an existing identical key is already done.
		if existing, ok, err := dst.Get(key); err != nil {
			log.Fatalf("Failed to check %q: %v", key, err)
		} else if ok && len(existing) == len(data) {
			skipped++
			continue
		}

		if !*dryRun {
			if err := dst.Put(key, data); err != nil {
				log.Fatalf("Failed to write %q: %v", key, err)
			}
		}
		migrated++
	}

	log.Println("====================================")
	log.Printf("Migration complete! Migrated %d entries, skipped %d already present", migrated, skipped)
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}
