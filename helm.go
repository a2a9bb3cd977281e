package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	cli "github.com/helmdeck/helm/cmd/helm"
	"github.com/helmdeck/helm/internal/config"
)

//go:embed etc/helm.yaml
var embeddedConfig []byte

func main() {
	// Load .env if present so ${ANTHROPIC_API_KEY} expansion works.
	_ = godotenv.Load()

	c, err := config.LoadFromBytes(embeddedConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load embedded config: %v\n", err)
		os.Exit(1)
	}

	rootCmd := cli.SetupRootCmd(&c)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
