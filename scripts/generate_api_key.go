package main

import (
	"fmt"
	"log"

	"github.com/passbi/transport_catalogue/internal/middleware"
)

func main() {
	key, hash, err := middleware.GenerateAPIKey()
	if err != nil {
		log.Fatalf("Failed to generate API key: %v", err)
	}

	fmt.Println("═══════════════════════════════════════════════════")
	fmt.Println("🔑 API Key Generated")
	fmt.Println("═══════════════════════════════════════════════════")
	fmt.Printf("\nAPI Key (show ONLY ONCE):\n%s\n", key)
	fmt.Printf("\nHash (store in config.yml):\n%s\n", hash)
	fmt.Println("═══════════════════════════════════════════════════")
	fmt.Println("\n⚠️  Save the API key now! You won't be able to see it again.")
	fmt.Println("\nAdd to config.yml:")
	fmt.Println("auth:")
	fmt.Println("  enabled: true")
	fmt.Println("  key_hashes:")
	fmt.Printf("    - %s\n", hash)
	fmt.Println("═══════════════════════════════════════════════════")
}
