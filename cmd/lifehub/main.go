package main

import (
	"log"

	"github.com/MrSnakeDoc/lifehub/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ lifehub failed to start: %v", err)
	}
}
