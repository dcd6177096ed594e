package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/harrisonrobin/dayplan/pkg/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("dayplan failed")
		stop()
		os.Exit(1)
	}
}
