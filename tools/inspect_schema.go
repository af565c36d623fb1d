// inspect_schema prints the tables GORM creates for the service models.
//
//	go run tools/inspect_schema.go
package main

import (
	"fmt"
	"log"

	"github.com/localnerve/wpq-drafts/internal/database"
	"github.com/localnerve/wpq-drafts/internal/logging"
	"github.com/localnerve/wpq-drafts/internal/testenv"
)

func main() {
	cfg := testenv.SQLiteConfig()
	db, err := database.Connect(cfg, logging.Discard())
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close(db)

	// Auto-migrate to see what GORM creates
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	// Get the schema
	var tables []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table' ORDER BY name").Scan(&tables)

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)
		var schema string
		db.Raw("SELECT sql FROM sqlite_master WHERE name = ?", table).Scan(&schema)
		fmt.Println(schema)

		var indexes []string
		db.Raw("SELECT sql FROM sqlite_master WHERE type='index' AND tbl_name = ? AND sql IS NOT NULL", table).Scan(&indexes)
		for _, idx := range indexes {
			fmt.Println(idx)
		}
	}
}
