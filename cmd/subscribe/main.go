// subscribe connects to a pushevent server and prints every event it receives.
// Usage: go run ./cmd/subscribe -url ws://127.0.0.1:3012/hello_world
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/pushevent/internal/connection"
)

func main() {
	url := flag.String("url", "ws://127.0.0.1:3012/hello_world", "websocket URL; the path selects the subscription")
	verbose := flag.Bool("verbose", false, "print receive timestamps and periodic stats")
	flag.Parse()

	// Setup logger
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *url, *verbose, os.Stdout, logger); err != nil {
		logger.Error("subscribe failed", "error", err)
		cancel()
		os.Exit(1)
	}
}

// run prints events until ctx is done or the connection is lost. The client is
// always closed before run returns.
func run(ctx context.Context, url string, verbose bool, out io.Writer, logger *slog.Logger) error {
	cfg := connection.DefaultClientConfig()
	cfg.URL = url

	client := connection.NewClient(cfg, logger)
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", url, err)
	}
	defer client.Close()

	logger.Info("subscribed - press Ctrl+C to stop", "url", url)

	var received int64
	stats := time.NewTicker(10 * time.Second)
	defer stats.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down", "received", received)
			return nil

		case err := <-client.Errors():
			// Print whatever arrived before the connection dropped.
		drain:
			for {
				select {
				case msg := <-client.Messages():
					received++
					printEvent(out, msg, verbose)
				default:
					break drain
				}
			}
			return fmt.Errorf("connection lost after %d events: %w", received, err)

		case msg := <-client.Messages():
			received++
			printEvent(out, msg, verbose)

		case <-stats.C:
			logger.Debug("stats", "received", received, "connected", client.IsConnected())
		}
	}
}

func printEvent(out io.Writer, msg connection.TimestampedMessage, verbose bool) {
	if verbose {
		fmt.Fprintf(out, "[%s] %s\n", msg.ReceivedAt.Format(time.RFC3339Nano), msg.Data)
		return
	}
	fmt.Fprintf(out, "%s\n", msg.Data)
}
