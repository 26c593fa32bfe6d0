package settlement

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fintechforge/forge-api/internal/civiltime"
	"github.com/fintechforge/forge-api/internal/clearing"
	"github.com/fintechforge/forge-api/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settlement_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&types.Order{},
		&types.Execution{},
		&types.ExchangeFill{},
		&clearing.Clearing{},
		&types.Trade{},
		&types.TradeStatusChange{},
		&Settlement{},
	))
	return db
}

func newTestService(t *testing.T, settlementDays int) *Service {
	t.Helper()
	calc := NewCalculator(NewRegistryForYears(2023, 2024))
	return NewService(newTestDB(t), calc, settlementDays)
}

// seedTrade inserts the order, execution and clearing rows SettleTrade
// reads, returning the execution ID used as the trade ID.
func seedTrade(t *testing.T, s *Service, executedAt time.Time, executionTZ, settlementTZ string) string {
	t.Helper()

	order := &types.Order{
		OrderID:            "ORD-1",
		ClientID:           "CLIENT_1",
		Symbol:             "AAPL",
		Side:               types.SideBuy,
		OrderType:          types.OrderTypeMarket,
		Quantity:           100,
		Price:              190,
		Currency:           "USD",
		ExecutionTimezone:  executionTZ,
		SettlementTimezone: settlementTZ,
		Status:             "FILLED",
	}
	require.NoError(t, s.db.db.Create(order).Error)

	execution := &types.Execution{
		ExecutionID:   "EXEC-1",
		OrderID:       order.OrderID,
		TotalQuantity: 100,
		AveragePrice:  190.5,
		Side:          order.Side,
		Status:        "COMPLETED",
		CreatedAt:     executedAt,
	}
	require.NoError(t, s.db.db.Create(execution).Error)

	clr := &clearing.Clearing{
		ClearingID:       "CLR-1",
		TradeID:          execution.ExecutionID,
		ClearingStatus:   "CLEARED",
		MarginRequired:   2286,
		NetPositions:     100,
		SettlementAmount: 19050,
	}
	require.NoError(t, s.db.db.Create(clr).Error)

	ledger := types.NewTrade(types.TradeTypeStock, order.Symbol, order.Side, types.TradeEconomics{
		TradeID:  execution.ExecutionID,
		Currency: order.Currency,
	})
	ledger.UpdateStatus(types.TradeStatusFilled, "SYSTEM", "TRADING", "order executed across exchanges")
	require.NoError(t, s.db.db.Create(ledger).Error)

	return execution.ExecutionID
}

func TestSettleTradePersistsBusinessDaySettlementDate(t *testing.T) {
	s := newTestService(t, 2)

	// Friday 2023-12-15 16:00 New York is 21:00 UTC. T+2 skips the
	// weekend and lands on Tuesday.
	executedAt := time.Date(2023, 12, 15, 21, 0, 0, 0, time.UTC)
	tradeID := seedTrade(t, s, executedAt, "America/New_York", "America/New_York")

	resp, err := s.SettleTrade(tradeID)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, resp.SettlementStatus)
	assert.Equal(t, "US", resp.Jurisdiction)
	assert.Equal(t, "2023-12-15", resp.TradeDate.String())
	assert.Equal(t, "2023-12-19", resp.SettlementDate.String())
	assert.Equal(t, 19050.0, resp.FinalAmount)

	stored, err := s.GetSettlement(resp.SettlementID)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-19", stored.SettlementDate)
	assert.Equal(t, "America/New_York", stored.ExecutionTimezone)
	assert.Equal(t, 2, stored.SettlementDays)
}

func TestSettleTradeConfirmsLedgerEntry(t *testing.T) {
	s := newTestService(t, 2)

	executedAt := time.Date(2023, 12, 15, 21, 0, 0, 0, time.UTC)
	tradeID := seedTrade(t, s, executedAt, "America/New_York", "America/New_York")

	_, err := s.SettleTrade(tradeID)
	require.NoError(t, err)

	ledger, err := s.db.GetTradeByID(tradeID)
	require.NoError(t, err)
	assert.Equal(t, types.TradeStatusConfirmed, ledger.Status)
	assert.Equal(t, "2023-12-15", ledger.Economics.TradeDate)
	assert.Equal(t, "2023-12-19", ledger.Economics.SettlementDate)

	require.Len(t, ledger.StatusHistory, 2)
	var confirmed *types.TradeStatusChange
	for i := range ledger.StatusHistory {
		if ledger.StatusHistory[i].ToStatus == types.TradeStatusConfirmed {
			confirmed = &ledger.StatusHistory[i]
		}
	}
	require.NotNil(t, confirmed)
	assert.Equal(t, types.TradeStatusFilled, confirmed.FromStatus)
	assert.Equal(t, "SETTLEMENT", confirmed.System)
	assert.True(t, confirmed.VerifyHash())
}

func TestAdvanceTradeStatusSettlesLedgerEntry(t *testing.T) {
	d := NewDatabase(newTestDB(t))

	trade := types.NewTrade(types.TradeTypeStock, "AAPL", types.SideBuy, types.TradeEconomics{
		TradeID:  "EXEC-1",
		Currency: "USD",
	})
	require.NoError(t, d.db.Create(trade).Error)

	require.NoError(t, d.AdvanceTradeStatus("EXEC-1", types.TradeStatusSettled, "CSD", "settlement completed"))

	got, err := d.GetTradeByID("EXEC-1")
	require.NoError(t, err)
	assert.Equal(t, types.TradeStatusSettled, got.Status)
	require.Len(t, got.StatusHistory, 1)
	assert.Equal(t, types.TradeStatusPending, got.StatusHistory[0].FromStatus)
	assert.True(t, got.StatusHistory[0].VerifyHash())

	err = d.AdvanceTradeStatus("NO-SUCH-TRADE", types.TradeStatusSettled, "CSD", "settlement completed")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSettleTradeCrossTimezoneUsesSettlementMarketDate(t *testing.T) {
	s := newTestService(t, 2)

	// Friday 23:30 London is already Saturday in Tokyo, so counting
	// starts from the weekend and lands on Tuesday.
	executedAt := time.Date(2023, 12, 15, 23, 30, 0, 0, time.UTC)
	tradeID := seedTrade(t, s, executedAt, "Europe/London", "Asia/Tokyo")

	resp, err := s.SettleTrade(tradeID)
	require.NoError(t, err)

	assert.Equal(t, "JP", resp.Jurisdiction)
	assert.Equal(t, "2023-12-16", resp.TradeDate.String())
	assert.Equal(t, "2023-12-19", resp.SettlementDate.String())
}

func TestSettleTradeRejectsUnknownTimezone(t *testing.T) {
	s := newTestService(t, 2)

	executedAt := time.Date(2023, 12, 15, 21, 0, 0, 0, time.UTC)
	tradeID := seedTrade(t, s, executedAt, "America/New_York", "Not/AZone")

	_, err := s.SettleTrade(tradeID)
	require.Error(t, err)
	assert.ErrorIs(t, err, civiltime.ErrUnknownTimezone)
}

func TestPreviewComputesWithoutPersisting(t *testing.T) {
	s := newTestService(t, 2)

	// Sunday 23:30 London on New Year's Eve is Monday 08:30 in Tokyo.
	// T+0 settles on the trade date itself.
	resp, err := s.Preview(PreviewRequest{
		LocalTime:          "2023-12-31T23:30:00",
		ExecutionTimezone:  "Europe/London",
		SettlementTimezone: "Asia/Tokyo",
		SettlementDays:     0,
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", resp.TradeDate.String())
	assert.Equal(t, "2024-01-01", resp.SettlementDate.String())
	assert.Equal(t, "JP", resp.Jurisdiction)
	assert.Equal(t, 8, resp.SettlementLocal.Hour)

	var count int64
	require.NoError(t, s.db.db.Model(&Settlement{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPreviewRejectsMalformedLocalTime(t *testing.T) {
	s := newTestService(t, 2)

	_, err := s.Preview(PreviewRequest{
		LocalTime:          "2023-12-31 23:30",
		ExecutionTimezone:  "Europe/London",
		SettlementTimezone: "Asia/Tokyo",
	})
	assert.Error(t, err)
}

func TestRegisterHolidayAffectsSubsequentSettlements(t *testing.T) {
	s := newTestService(t, 2)

	s.RegisterHoliday("UK", civiltime.Date{Year: 2023, Month: time.December, Day: 19})

	holidays := s.Holidays("UK")
	assert.Contains(t, holidays, civiltime.Date{Year: 2023, Month: time.December, Day: 19})

	resp, err := s.Preview(PreviewRequest{
		LocalTime:          "2023-12-15T16:00:00",
		ExecutionTimezone:  "Europe/London",
		SettlementTimezone: "Europe/London",
		SettlementDays:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, "2023-12-20", resp.SettlementDate.String())
}

func TestProcessorAdvancesDueSettlements(t *testing.T) {
	db := newTestDB(t)
	calc := NewCalculator(NewRegistryForYears(2023, 2024))
	s := NewService(db, calc, 2)
	p := NewProcessor(s.GetDB())

	due := &Settlement{
		SettlementID:       "STL-DUE",
		TradeID:            "EXEC-DUE",
		SettlementStatus:   StatusPending,
		SettlementTimezone: "America/New_York",
		TradeDate:          "2023-12-15",
		SettlementDate:     "2023-12-19",
		FinalAmount:        1000,
	}
	notDue := &Settlement{
		SettlementID:       "STL-FUTURE",
		TradeID:            "EXEC-FUTURE",
		SettlementStatus:   StatusPending,
		SettlementTimezone: "America/New_York",
		TradeDate:          "2023-12-15",
		SettlementDate:     "2023-12-29",
		FinalAmount:        1000,
	}
	require.NoError(t, s.db.CreateSettlement(due))
	require.NoError(t, s.db.CreateSettlement(notDue))

	// Noon UTC on the settlement date; still the 19th in New York.
	now := time.Date(2023, 12, 19, 12, 0, 0, 0, time.UTC)
	require.NoError(t, p.processOpenSettlements(now))

	got, err := s.GetSettlement("STL-DUE")
	require.NoError(t, err)
	assert.Equal(t, StatusSettling, got.SettlementStatus)

	got, err = s.GetSettlement("STL-FUTURE")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.SettlementStatus)
}

func TestSettlementDueJudgedInSettlementTimezone(t *testing.T) {
	p := NewProcessor(nil)

	stl := &Settlement{
		SettlementID:       "STL-TZ",
		SettlementTimezone: "Asia/Tokyo",
		SettlementDate:     "2023-12-19",
	}

	// 16:00 UTC Dec 18 is already Dec 19 in Tokyo.
	due, err := p.settlementDue(stl, time.Date(2023, 12, 18, 16, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, due)

	// 16:00 UTC Dec 17 is Dec 18 in Tokyo, one day early.
	due, err = p.settlementDue(stl, time.Date(2023, 12, 17, 16, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, due)
}
