package main

import (
	"os"

	"github.com/joho/godotenv"

	basecampcmder "github.com/summitchronicles/basecamp/cmd/basecamp"
)

func main() {
	// Provider API keys come from the environment; a local .env is the
	// easiest way to supply them in development.
	_ = godotenv.Load()

	cmd := basecampcmder.NewBasecampCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
