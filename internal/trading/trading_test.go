package trading

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fintechforge/forge-api/internal/civiltime"
	"github.com/fintechforge/forge-api/internal/types"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trading_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&types.Order{},
		&types.Execution{},
		&types.ExchangeFill{},
		&types.Trade{},
		&types.TradeStatusChange{},
		&IdempotencyRecord{},
	))
	return NewService(db)
}

func validOrder() *types.Order {
	return &types.Order{
		ClientID: "CLIENT_1",
		Symbol:   "AAPL",
		Side:     types.SideBuy,
		Quantity: 100,
		Price:    190,
	}
}

func TestCreateOrderAppliesDefaults(t *testing.T) {
	s := newTestService(t)

	order := validOrder()
	require.NoError(t, s.CreateOrder(order, "key-1"))

	assert.NotEmpty(t, order.OrderID)
	assert.Equal(t, "PENDING", order.Status)
	assert.Equal(t, types.OrderTypeMarket, order.OrderType)
	assert.Equal(t, "USD", order.Currency)
	assert.Equal(t, "America/New_York", order.ExecutionTimezone)
	assert.Equal(t, "America/New_York", order.SettlementTimezone)
}

func TestCreateOrderSettlementTimezoneDefaultsToExecution(t *testing.T) {
	s := newTestService(t)

	order := validOrder()
	order.ExecutionTimezone = "Asia/Tokyo"
	require.NoError(t, s.CreateOrder(order, "key-1"))

	assert.Equal(t, "Asia/Tokyo", order.SettlementTimezone)
}

func TestCreateOrderIsIdempotent(t *testing.T) {
	s := newTestService(t)

	first := validOrder()
	require.NoError(t, s.CreateOrder(first, "key-1"))

	second := validOrder()
	require.NoError(t, s.CreateOrder(second, "key-1"))
	assert.Equal(t, first.OrderID, second.OrderID)

	third := validOrder()
	require.NoError(t, s.CreateOrder(third, "key-2"))
	assert.NotEqual(t, first.OrderID, third.OrderID)
}

func TestCreateOrderValidation(t *testing.T) {
	s := newTestService(t)

	order := validOrder()
	order.Quantity = 0
	assert.ErrorIs(t, s.CreateOrder(order, "key-1"), types.ErrInvalidQuantity)

	order = validOrder()
	order.Side = "HOLD"
	assert.ErrorIs(t, s.CreateOrder(order, "key-2"), types.ErrInvalidSide)

	order = validOrder()
	order.OrderType = types.OrderTypeLimit
	order.Price = 0
	assert.ErrorIs(t, s.CreateOrder(order, "key-3"), types.ErrMissingLimit)
}

func TestRecordTradeLedgerEntry(t *testing.T) {
	s := newTestService(t)

	order := validOrder()
	require.NoError(t, s.CreateOrder(order, "key-1"))

	execution := &types.Execution{
		ExecutionID:   "EXEC-LEDGER",
		OrderID:       order.OrderID,
		TotalQuantity: 100,
		AveragePrice:  190.5,
		Side:          order.Side,
		Status:        "COMPLETED",
	}
	require.NoError(t, s.recordTradeLedgerEntry(order, execution))

	trade, err := s.db.GetTradeByID("EXEC-LEDGER")
	require.NoError(t, err)
	assert.Equal(t, types.TradeStatusFilled, trade.Status)
	assert.Equal(t, "AAPL", trade.InstrumentID)
	assert.Equal(t, types.SideBuy, trade.Side)
	assert.Equal(t, "TRADING", trade.SourceSystem)
	assert.True(t, trade.Economics.NotionalAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, trade.Economics.Price.Equal(decimal.NewFromFloat(190.5)))

	require.Len(t, trade.StatusHistory, 1)
	change := trade.StatusHistory[0]
	assert.Equal(t, types.TradeStatusPending, change.FromStatus)
	assert.Equal(t, types.TradeStatusFilled, change.ToStatus)
	assert.True(t, change.VerifyHash())
}

func TestCreateOrderRejectsUnknownTimezone(t *testing.T) {
	s := newTestService(t)

	order := validOrder()
	order.ExecutionTimezone = "Mars/Olympus_Mons"
	assert.ErrorIs(t, s.CreateOrder(order, "key-1"), civiltime.ErrUnknownTimezone)

	order = validOrder()
	order.SettlementTimezone = "Not/AZone"
	assert.ErrorIs(t, s.CreateOrder(order, "key-2"), civiltime.ErrUnknownTimezone)

	var count int64
	require.NoError(t, s.db.db.Model(&types.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}
