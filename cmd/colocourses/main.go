package main

import (
	"log"

	"github.com/colocapp/colocourses/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ colocourses failed to start: %v", err)
	}
}
