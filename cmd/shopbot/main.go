package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/bufaso/shopbot/internal/app"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create app")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{Addr: ":" + port, Handler: application.HTTPHandler()}
	go func() {
		zlog.Info().Str("port", port).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error().Err(err).Msg("health server stopped")
		}
	}()

	go keepAlive(ctx)

	go func() {
		if err := application.Notifier.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zlog.Error().Err(err).Msg("notifier stopped")
		}
	}()

	zlog.Info().Msg("bot started")
	if err := application.Bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Error().Err(err).Msg("bot stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	_ = application.Bus.Close()
	zlog.Info().Msg("shutdown complete")
}

// keepAlive pings BASE_URL so free-tier hosting does not idle the process
// out. Disabled unless both BASE_URL and PING_INTERVAL_MINUTES are set.
func keepAlive(ctx context.Context) {
	base := os.Getenv("BASE_URL")
	minutes, _ := strconv.Atoi(os.Getenv("PING_INTERVAL_MINUTES"))
	if base == "" || minutes <= 0 {
		return
	}
	t := time.NewTicker(time.Duration(minutes) * time.Minute)
	defer t.Stop()
	client := &http.Client{Timeout: 10 * time.Second}
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
			if err != nil {
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				zlog.Warn().Err(err).Msg("keep-alive ping failed")
				continue
			}
			_ = resp.Body.Close()
		}
	}
}
