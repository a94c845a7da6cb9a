package main

import (
	"context"
	"log"

	"github.com/pongpong-zigzag/Airdrop-QDOGE/internal/app/bootstrap"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Seed snapshots, then run the relay and allocation refresh loops.
func main() {
	log.Println("airdrop-qdoge worker starting")
	app, err := bootstrap.BuildWorker()
	if err != nil {
		log.Fatalf("bootstrap worker failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("worker shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("airdrop-qdoge worker stopped with error: %v", err)
	}
}
