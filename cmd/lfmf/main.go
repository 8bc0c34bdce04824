package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/signalsfoundry/groundwave/internal/driver"
	"github.com/signalsfoundry/groundwave/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := driver.New(logging.NewFromEnv()).Run(ctx, os.Args[1:])
	stop()
	os.Exit(int(code))
}
