// Command server runs the account security HTTP API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrymomot/fintrack/pkg/config"
)

func main() {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}
