package main

import (
	"context"
	"os"

	"github.com/foundation-rs/invpush/pkg/config"
	"github.com/foundation-rs/invpush/pkg/logger"
	"github.com/foundation-rs/invpush/pkg/push"
)

func main() {
	// Initialize logger with default settings until the inventory is loaded
	logger.Init("info", "console")
	log := logger.Get()

	var inventoryFile string
	if len(os.Args) > 1 {
		inventoryFile = os.Args[1]
	} else {
		path, err := config.DefaultPath()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to locate inventory file")
		}
		inventoryFile = path
	}

	log.Info().Str("inventory_file", inventoryFile).Msg("starting invpush")

	inv, err := config.Load(inventoryFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load inventory file")
	}

	// Re-initialize with the configured level and format
	logger.Init(inv.GetLogLevel(), inv.GetLogFormat())
	log = logger.Get()

	pusher := push.New(*log)
	results := pusher.PushAll(context.Background(), inv)

	_, failed, _ := push.Summarize(results)
	if failed > 0 {
		log.Error().Int("failed", failed).Msg("invpush completed with failures")
		os.Exit(1)
	}

	log.Info().Msg("invpush completed successfully")
}
