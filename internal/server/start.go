package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Start runs the HTTP server and the marker expiry sweeper, then blocks
// until an interrupt or terminate signal arrives and shuts everything down
// in order: listener, event bus, database.
func (s *Server) Start() {
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go s.markerService.RunSweeper(sweepCtx, s.Cfg.SweepInterval)

	go func() {
		if err := s.E.Start(s.Cfg.Addr); err != nil && err != http.ErrServerClosed {
			s.E.Logger.Fatalf("shutting down the server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.E.Shutdown(ctx); err != nil {
		s.E.Logger.Fatal(err)
	}
	// Closing the bus drops every subscriber registration; nothing about a
	// subscription survives the process.
	if err := s.bus.Close(); err != nil {
		slog.Error("Failed to close event bus", "error", err)
	}
	if s.db != nil {
		s.db.Close(ctx)
	}
}
