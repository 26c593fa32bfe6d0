package clearing

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fintechforge/forge-api/internal/types"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clearing_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&types.Trade{},
		&types.TradeStatusChange{},
	))
	return NewDatabase(db)
}

func TestAdvanceTradeStatusAffirmsLedgerEntry(t *testing.T) {
	d := newTestDatabase(t)

	trade := types.NewTrade(types.TradeTypeStock, "AAPL", types.SideBuy, types.TradeEconomics{
		TradeID:  "EXEC-1",
		Currency: "USD",
	})
	trade.UpdateStatus(types.TradeStatusFilled, "SYSTEM", "TRADING", "order executed across exchanges")
	require.NoError(t, d.db.Create(trade).Error)

	require.NoError(t, d.AdvanceTradeStatus("EXEC-1", types.TradeStatusAffirmed, "CLEARING", "trade cleared"))

	var got types.Trade
	require.NoError(t, d.db.Preload("StatusHistory").Where("trade_id = ?", "EXEC-1").First(&got).Error)
	assert.Equal(t, types.TradeStatusAffirmed, got.Status)
	require.Len(t, got.StatusHistory, 2)
	for _, change := range got.StatusHistory {
		assert.True(t, change.VerifyHash())
	}
}

func TestAdvanceTradeStatusMissingLedgerEntry(t *testing.T) {
	d := newTestDatabase(t)

	err := d.AdvanceTradeStatus("NO-SUCH-TRADE", types.TradeStatusAffirmed, "CLEARING", "trade cleared")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
