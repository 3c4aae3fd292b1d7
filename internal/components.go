package internal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/anurajdeol90/team-digest/internal/apperr"
	"github.com/anurajdeol90/team-digest/internal/digest"
	"github.com/anurajdeol90/team-digest/internal/digestservice"
	"github.com/anurajdeol90/team-digest/internal/parser"
	"github.com/anurajdeol90/team-digest/internal/storage"
)

// NewLogger returns a structured JSON logger writing to w.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Components are the digest pipeline pieces shared by every command.
type Components struct {
	Store      *storage.FS
	Aggregator *digest.Aggregator
	Service    *digestservice.Service
}

// NewComponents wires storage, the aggregator and the digest service for the
// configured logs directory, which must exist.
func NewComponents(cfg *Config, logger *slog.Logger) (*Components, error) {
	info, err := os.Stat(cfg.Logs.Dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("logs dir %s does not exist: %w", cfg.Logs.Dir, apperr.ErrInvalidConfig)
	case err != nil:
		return nil, fmt.Errorf("stat logs dir: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("logs dir %s is not a directory: %w", cfg.Logs.Dir, apperr.ErrInvalidConfig)
	}

	store, err := storage.NewFS(cfg.Logs.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	agg := digest.NewAggregator(parser.NewGrammar(), store, "", cfg.Logs.Label(), logger)
	return &Components{
		Store:      store,
		Aggregator: agg,
		Service:    digestservice.NewService(agg, store, logger),
	}, nil
}
