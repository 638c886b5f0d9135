package main

import (
	"fmt"
	"log"

	"gridbot/core"
)

func main() {
	log.Printf("🔑 Generating new admin API token...")

	// Generate a new secret token with "adm" prefix for the admin HTTP API
	token, err := core.NewSecretToken("adm")
	if err != nil {
		log.Fatalf("❌ Failed to generate admin token: %v", err)
	}

	fmt.Printf("Generated Admin Token: %s\n", token)
	log.Printf("✅ Successfully generated admin API token")
}
