package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/db"
	"github.com/passbi/transport_catalogue/internal/logging"
	"github.com/passbi/transport_catalogue/internal/models"
	"github.com/passbi/transport_catalogue/internal/routing"
	"github.com/passbi/transport_catalogue/internal/store"
)

func main() {
	waitTime := flag.Int("bus-wait-time", 6, "Boarding wait time in minutes")
	velocity := flag.Float64("bus-velocity", 40, "Bus velocity in km/h")
	flag.Parse()

	logging.Init()
	log.Println("Transport Catalogue - Graph Build Check")
	log.Println("=======================================")

	log.Println("Connecting to database...")
	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	cat := catalogue.New()
	summary, err := store.LoadCatalogue(ctx, pool, cat)
	if err != nil {
		log.Fatalf("Failed to load network: %v", err)
	}

	if summary.Stops == 0 || summary.Buses == 0 {
		log.Fatalf("No network found in database. Run the importer first!")
	}

	startTime := time.Now()
	router := routing.NewRouter(models.RoutingSettings{BusWaitTime: *waitTime, BusVelocity: *velocity})
	if err := router.BuildGraph(cat); err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	duration := time.Since(startTime)

	g := router.Graph()
	served := 0
	for _, stop := range cat.GetSortedAllStops() {
		if len(stop.Buses) > 0 {
			served++
		}
	}

	fmt.Println()
	log.Println("Graph build completed!")
	log.Printf("Duration: %v", duration)
	log.Printf("Graph statistics:")
	log.Printf("   Vertices: %d", g.VertexCount())
	log.Printf("   Edges: %d", g.EdgeCount())
	log.Printf("   Stop coverage: %d/%d (%.1f%%)", served, summary.Stops, float64(served)/float64(summary.Stops)*100)
}
