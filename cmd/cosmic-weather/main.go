package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/i474232898/cosmic-weather/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a TOML config file (optional)")
	headless := flag.Bool("headless", false, "run without the terminal UI, serving only the local API")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, app.Options{ConfigPath: *configPath, Headless: *headless}); err != nil {
		fmt.Fprintf(os.Stderr, "cosmic-weather: %v\n", err)
		return 1
	}
	return 0
}
