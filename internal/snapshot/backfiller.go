// Package snapshot records daily price snapshots for open trade ideas, both
// on demand (the backfill endpoint) and on a polling interval (the pricebot
// daemon).
package snapshot

import (
	"context"
	"fmt"
	"time"

	"research-tracker-go/internal/marketdata"
	"research-tracker-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// endOfDay places a snapshot at the close of its trading day.
func endOfDay(day time.Time) time.Time {
	y, m, d := day.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
}

// dateKey normalizes a timestamp to its UTC day for dedup lookups.
func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Backfiller fills gaps in an idea's snapshot history from the market data
// provider. Safe to run repeatedly: only dates without an existing snapshot
// are inserted.
type Backfiller struct {
	logger *zap.Logger
	db     *gorm.DB
	client marketdata.QuoteClient
}

// NewBackfiller creates a new Backfiller.
func NewBackfiller(logger *zap.Logger, db *gorm.DB, client marketdata.QuoteClient) *Backfiller {
	return &Backfiller{logger: logger, db: db, client: client}
}

// existingSnapshotDates returns the set of days that already have a snapshot.
func (b *Backfiller) existingSnapshotDates(ideaID uint) (map[string]struct{}, error) {
	var timestamps []time.Time
	err := b.db.Model(&models.PriceSnapshot{}).
		Where("idea_id = ?", ideaID).
		Pluck("timestamp", &timestamps).Error
	if err != nil {
		return nil, fmt.Errorf("could not load existing snapshots for idea %d: %w", ideaID, err)
	}

	existing := make(map[string]struct{}, len(timestamps))
	for _, ts := range timestamps {
		existing[dateKey(ts)] = struct{}{}
	}
	return existing, nil
}

// BackfillIdea inserts snapshots for every trading day between the idea's
// start date and today that has no snapshot yet. For pair trades a day is
// only recorded when both legs have a close; otherwise the P&L engine would
// reject the snapshot anyway. Returns the number of snapshots created.
// The idea's Folder must be preloaded.
func (b *Backfiller) BackfillIdea(ctx context.Context, idea *models.Idea) (int, error) {
	if idea.Folder.TickerPrimary == nil {
		return 0, fmt.Errorf("idea %d has no primary ticker", idea.ID)
	}

	start := idea.StartDate
	end := time.Now().UTC()

	existing, err := b.existingSnapshotDates(idea.ID)
	if err != nil {
		return 0, err
	}

	primaryBars, err := b.client.GetDailyHistory(*idea.Folder.TickerPrimary, start, end)
	if err != nil {
		return 0, fmt.Errorf("could not fetch history for %s: %w", *idea.Folder.TickerPrimary, err)
	}
	if len(primaryBars) == 0 {
		return 0, nil
	}

	secondaryCloses := make(map[string]float64)
	if idea.IsPair() {
		if idea.Folder.TickerSecondary == nil {
			return 0, fmt.Errorf("pair idea %d has no secondary ticker", idea.ID)
		}
		secondaryBars, err := b.client.GetDailyHistory(*idea.Folder.TickerSecondary, start, end)
		if err != nil {
			return 0, fmt.Errorf("could not fetch history for %s: %w", *idea.Folder.TickerSecondary, err)
		}
		for _, bar := range secondaryBars {
			secondaryCloses[dateKey(bar.Date)] = bar.Close
		}
	}

	created := 0
	for _, bar := range primaryBars {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		key := dateKey(bar.Date)
		if _, ok := existing[key]; ok {
			continue
		}

		snap := models.PriceSnapshot{
			IdeaID:       idea.ID,
			Timestamp:    endOfDay(bar.Date),
			PricePrimary: bar.Close,
			Source:       models.SourceProvider,
		}

		if idea.IsPair() {
			close, ok := secondaryCloses[key]
			if !ok {
				continue // secondary leg missing for this day
			}
			snap.PriceSecondary = &close
		}

		if err := b.db.Create(&snap).Error; err != nil {
			return created, fmt.Errorf("could not save snapshot for idea %d: %w", idea.ID, err)
		}
		created++
	}

	if created > 0 {
		b.logger.Info("Backfilled price snapshots",
			zap.Uint("idea_id", idea.ID),
			zap.Int("created", created))
	}

	return created, nil
}
