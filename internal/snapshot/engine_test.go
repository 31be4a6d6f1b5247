package snapshot

import (
	"context"
	"testing"
	"time"

	"research-tracker-go/internal/config"
	"research-tracker-go/internal/marketdata"
	"research-tracker-go/internal/metrics"
	"research-tracker-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MockQuoteClient is a mock implementation of the QuoteClient interface.
type MockQuoteClient struct {
	mock.Mock
}

func (m *MockQuoteClient) GetQuote(ticker string) (*marketdata.Quote, error) {
	args := m.Called(ticker)
	return args.Get(0).(*marketdata.Quote), args.Error(1)
}

func (m *MockQuoteClient) GetDailyHistory(ticker string, start, end time.Time) ([]marketdata.Bar, error) {
	args := m.Called(ticker, start, end)
	return args.Get(0).([]marketdata.Bar), args.Error(1)
}

// setupTest creates an isolated in-memory database and a mock provider.
func setupTest(t *testing.T) (*gorm.DB, *MockQuoteClient) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Folder{}, &models.Idea{}, &models.PriceSnapshot{})
	require.NoError(t, err)

	return db, new(MockQuoteClient)
}

func strptr(s string) *string { return &s }

func day(yyyy int, mm time.Month, dd int) time.Time {
	return time.Date(yyyy, mm, dd, 0, 0, 0, 0, time.UTC)
}

func TestBackfillIdea_CreatesMissingSnapshots(t *testing.T) {
	db, client := setupTest(t)

	folder := models.Folder{Type: models.FolderSingle, TickerPrimary: strptr("AAPL")}
	require.NoError(t, db.Create(&folder).Error)
	idea := models.Idea{
		FolderID:          folder.ID,
		Folder:            folder,
		Title:             "AAPL long",
		TradeType:         metrics.TradeLong,
		Status:            models.StatusActive,
		StartDate:         day(2025, 6, 2),
		EntryPricePrimary: 200,
	}
	require.NoError(t, db.Create(&idea).Error)

	client.On("GetDailyHistory", "AAPL", mock.Anything, mock.Anything).Return([]marketdata.Bar{
		{Date: day(2025, 6, 2), Close: 201.5},
		{Date: day(2025, 6, 3), Close: 203.0},
	}, nil)

	b := NewBackfiller(zap.NewNop(), db, client)
	created, err := b.BackfillIdea(context.Background(), &idea)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	var snaps []models.PriceSnapshot
	require.NoError(t, db.Order("timestamp asc").Find(&snaps).Error)
	require.Len(t, snaps, 2)
	assert.InDelta(t, 201.5, snaps[0].PricePrimary, 1e-9)
	assert.Equal(t, models.SourceProvider, snaps[0].Source)
	assert.Equal(t, 23, snaps[0].Timestamp.UTC().Hour())

	// Second run finds nothing to do.
	created, err = b.BackfillIdea(context.Background(), &idea)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	client.AssertExpectations(t)
}

func TestBackfillIdea_PairRequiresBothLegs(t *testing.T) {
	db, client := setupTest(t)

	folder := models.Folder{
		Type:            models.FolderPair,
		TickerPrimary:   strptr("KO"),
		TickerSecondary: strptr("PEP"),
	}
	require.NoError(t, db.Create(&folder).Error)
	orientation := metrics.LongPrimaryShortSecondary
	idea := models.Idea{
		FolderID:            folder.ID,
		Folder:              folder,
		Title:               "KO/PEP pair",
		TradeType:           metrics.TradePair,
		PairOrientation:     &orientation,
		Status:              models.StatusActive,
		StartDate:           day(2025, 6, 2),
		EntryPricePrimary:   60,
		EntryPriceSecondary: fptrTest(170),
	}
	require.NoError(t, db.Create(&idea).Error)

	client.On("GetDailyHistory", "KO", mock.Anything, mock.Anything).Return([]marketdata.Bar{
		{Date: day(2025, 6, 2), Close: 61},
		{Date: day(2025, 6, 3), Close: 62},
	}, nil)
	// Secondary leg only has the first day; the second day must be skipped.
	client.On("GetDailyHistory", "PEP", mock.Anything, mock.Anything).Return([]marketdata.Bar{
		{Date: day(2025, 6, 2), Close: 171},
	}, nil)

	b := NewBackfiller(zap.NewNop(), db, client)
	created, err := b.BackfillIdea(context.Background(), &idea)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	var snap models.PriceSnapshot
	require.NoError(t, db.First(&snap).Error)
	require.NotNil(t, snap.PriceSecondary)
	assert.InDelta(t, 171, *snap.PriceSecondary, 1e-9)
}

func TestSweep_SkipsClosedIdeas(t *testing.T) {
	db, client := setupTest(t)

	folder := models.Folder{Type: models.FolderSingle, TickerPrimary: strptr("MSFT")}
	require.NoError(t, db.Create(&folder).Error)
	open := models.Idea{
		FolderID: folder.ID, Title: "open", TradeType: metrics.TradeLong,
		Status: models.StatusActive, StartDate: day(2025, 6, 2), EntryPricePrimary: 400,
	}
	closed := models.Idea{
		FolderID: folder.ID, Title: "closed", TradeType: metrics.TradeLong,
		Status: models.StatusClosed, StartDate: day(2025, 1, 2), EntryPricePrimary: 380,
	}
	require.NoError(t, db.Create(&open).Error)
	require.NoError(t, db.Create(&closed).Error)

	// Exactly one history fetch: the open idea's ticker.
	client.On("GetDailyHistory", "MSFT", mock.Anything, mock.Anything).Return([]marketdata.Bar{
		{Date: day(2025, 6, 2), Close: 410},
	}, nil).Once()

	engine := NewEngine(zap.NewNop(), &config.Config{}, client, db)
	require.NoError(t, engine.Sweep(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.PriceSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	client.AssertExpectations(t)
}

func fptrTest(v float64) *float64 { return &v }
