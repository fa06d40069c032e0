package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
