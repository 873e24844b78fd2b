package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/db"
	"github.com/passbi/transport_catalogue/internal/logging"
	"github.com/passbi/transport_catalogue/internal/reader"
	"github.com/passbi/transport_catalogue/internal/store"
)

func main() {
	documentPath := flag.String("document", "", "Path to the JSON network document (required)")
	createSchema := flag.Bool("create-schema", false, "Create missing network tables before import")
	flag.Parse()

	if *documentPath == "" {
		fmt.Println("Usage: importer --document=<network.json> [--create-schema]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logging.Init()
	log.Println("Starting network import...")
	log.Printf("Document: %s", *documentPath)

	f, err := os.Open(*documentPath)
	if err != nil {
		log.Fatalf("Failed to open document: %v", err)
	}
	doc, err := reader.Decode(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to decode document: %v", err)
	}

	// refuse documents that would not load back into a catalogue
	if err := reader.FillCatalogue(doc, catalogue.New()); err != nil {
		log.Fatalf("Document is inconsistent: %v", err)
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	startTime := time.Now()

	if *createSchema {
		if err := store.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("Failed to create schema: %v", err)
		}
		log.Println("Schema ready")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	summary, err := store.Import(ctx, tx, doc)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit transaction: %v", err)
	}

	log.Printf("Import completed in %s (%d stops, %d road distances, %d buses)",
		time.Since(startTime), summary.Stops, summary.Distances, summary.Buses)
}
