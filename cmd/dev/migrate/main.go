package main

import (
	"context"
	"log"

	"trekbooking/pkg/config"
	"trekbooking/pkg/db"
)

// migrate applies the booking schema, then opens the runtime pool once so a bad
// DATABASE_URL shows up here rather than at API startup.
func main() {
	cfg := config.Load()

	version, err := db.Migrate(cfg)
	if err != nil {
		log.Fatalf("[migrate] failed: %v", err)
	}
	log.Printf("[migrate] action=up version=%d", version)

	pool, err := db.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("[migrate] runtime pool: %v", err)
	}
	pool.Close()
	log.Printf("[migrate] action=check pool=ok simple_protocol=%t", cfg.DB.SimpleProtocol)
}
