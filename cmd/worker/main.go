// Command worker consumes activity events and appends them to the
// activity log.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	glog "github.com/labstack/gommon/log"

	"github.com/iliyamo/taskflow-api/internal/config"
	"github.com/iliyamo/taskflow-api/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := glog.New("activity-consumer")
	logger.SetLevel(config.ParseLevel(cfg.LogLevel))

	c := &queue.Consumer{
		URL:     cfg.AMQP.URL,
		Queue:   cfg.AMQP.Queue,
		LogPath: cfg.AMQP.LogPath,
		Logger:  logger,
	}
	logger.Infof("consuming %s into %s", cfg.AMQP.Queue, cfg.AMQP.LogPath)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
