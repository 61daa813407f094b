// import_regions loads a geofence set from a CSV file into the SQLite
// store so the daemon picks it up on the next start.
//
// CSV format: id,label,latitude,longitude,radius_m,message
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/GSDV/solomo/internal/adapters/storage"
	"github.com/GSDV/solomo/internal/core/domain"
)

func main() {
	csvPath := flag.String("csv", "regions.csv", "Path to CSV file")
	dbPath := flag.String("db", "solomo.db", "Path to SQLite database")
	flag.Parse()

	log.Printf("Importing regions from CSV...")
	log.Printf("CSV: %s", *csvPath)
	log.Printf("DB: %s", *dbPath)

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("Failed to open CSV: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)

	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Fatalf("Failed to read header: %v", err)
	}

	var regions []domain.Region
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			log.Printf("Warning: Failed to parse line %d: %v", lineNum, err)
			continue
		}

		if len(record) < 5 {
			log.Printf("Warning: Line %d has %d fields, expected at least 5", lineNum, len(record))
			continue
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			log.Printf("Warning: Line %d has invalid latitude: %v", lineNum, err)
			continue
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
		if err != nil {
			log.Printf("Warning: Line %d has invalid longitude: %v", lineNum, err)
			continue
		}
		radius, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
		if err != nil {
			log.Printf("Warning: Line %d has invalid radius: %v", lineNum, err)
			continue
		}

		region := domain.Region{
			ID:        strings.TrimSpace(record[0]),
			Label:     strings.TrimSpace(record[1]),
			Latitude:  lat,
			Longitude: lng,
			RadiusM:   radius,
		}
		if len(record) > 5 {
			region.Message = strings.TrimSpace(record[5])
		}

		if err := region.Validate(); err != nil {
			log.Printf("Warning: Line %d rejected: %v", lineNum, err)
			continue
		}

		regions = append(regions, region)
	}

	if err := domain.ValidateRegions(regions); err != nil {
		log.Fatalf("Region set invalid: %v", err)
	}

	store, err := storage.NewSQLiteStore(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	if err := store.SaveRegions(context.Background(), regions); err != nil {
		log.Fatalf("Save failed: %v", err)
	}

	log.Printf("Import complete: %d regions", len(regions))
}
