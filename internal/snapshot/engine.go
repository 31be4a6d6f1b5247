package snapshot

import (
	"context"
	"time"

	"research-tracker-go/internal/config"
	"research-tracker-go/internal/marketdata"
	"research-tracker-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Engine is the pricebot's polling loop: on every tick it backfills price
// snapshots for all open ideas.
type Engine struct {
	logger     *zap.Logger
	cfg        *config.Config
	db         *gorm.DB
	backfiller *Backfiller
}

// NewEngine creates a new snapshot engine.
func NewEngine(logger *zap.Logger, cfg *config.Config, client marketdata.QuoteClient, db *gorm.DB) *Engine {
	return &Engine{
		logger:     logger,
		cfg:        cfg,
		db:         db,
		backfiller: NewBackfiller(logger, db, client),
	}
}

// Run starts the engine's main loop and blocks until the context is
// cancelled. A sweep runs immediately at startup, then on every tick.
func (e *Engine) Run(ctx context.Context) {
	interval := time.Duration(e.cfg.PriceBot.TickInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info("Starting snapshot loop", zap.Duration("interval", interval))

	if err := e.Sweep(ctx); err != nil {
		e.logger.Error("Sweep failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Stopping snapshot engine...")
			return
		case <-ticker.C:
			if err := e.Sweep(ctx); err != nil {
				e.logger.Error("Sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep backfills snapshots for every open idea. Failures on one idea are
// logged and do not stop the rest of the sweep.
func (e *Engine) Sweep(ctx context.Context) error {
	var ideas []models.Idea
	err := e.db.Preload("Folder").
		Where("status NOT IN ?", []models.IdeaStatus{models.StatusClosed, models.StatusKilled}).
		Find(&ideas).Error
	if err != nil {
		return err
	}

	e.logger.Info("Sweeping open ideas for missing snapshots", zap.Int("count", len(ideas)))

	for i := range ideas {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := e.backfiller.BackfillIdea(ctx, &ideas[i]); err != nil {
			e.logger.Error("Backfill failed",
				zap.Uint("idea_id", ideas[i].ID),
				zap.String("title", ideas[i].Title),
				zap.Error(err))
		}
	}

	return nil
}
