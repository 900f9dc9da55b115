// Package api serves the matching engine over HTTP.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/zulandar/swapyard/internal/matching"
	"github.com/zulandar/swapyard/internal/models"
	"go.uber.org/zap"
)

// Ledger is the read side of the trade ledger. ledger.Ledger implements it.
type Ledger interface {
	ListRuns(ctx context.Context, limit int) ([]models.MatchRun, error)
	GetRun(ctx context.Context, id string) (*models.MatchRun, error)
	TradesFor(ctx context.Context, participantID int) ([]models.TradeRecord, error)
}

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Service *matching.Service
	// Round executes /execute requests. Defaults to a round without ledger
	// or notifier.
	Round *matching.Round
	// Ledger backs /runs and participant trade history. Optional.
	Ledger Ledger
	Logger *zap.Logger
	Port   int
	Out    io.Writer
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("api: service is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Round == nil {
		opts.Round = &matching.Round{Service: opts.Service, Logger: opts.Logger}
	}

	router := gin.New()
	router.Use(ginzap.Ginzap(opts.Logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(opts.Logger, true))
	router.Use(observe())

	h := &handlers{
		svc:    opts.Service,
		round:  opts.Round,
		ledger: opts.Ledger,
		log:    opts.Logger,
	}
	registerRoutes(router, h)
	return router, nil
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Swapyard API listening on http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}
