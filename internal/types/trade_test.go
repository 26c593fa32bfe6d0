package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEconomics() TradeEconomics {
	return TradeEconomics{
		NotionalAmount: decimal.NewFromInt(1000),
		Price:          decimal.NewFromFloat(150.00),
		Currency:       "USD",
		TradeDate:      "2023-12-15",
		SettlementDate: "2023-12-19",
	}
}

func TestTradeValue(t *testing.T) {
	econ := sampleEconomics()
	assert.True(t, econ.TradeValue().Equal(decimal.NewFromInt(150000)))

	econ.AccruedInterest = decimal.NewFromInt(2500)
	econ.Commission = decimal.NewFromInt(100)
	econ.Fees = decimal.NewFromInt(50)
	assert.True(t, econ.TradeValue().Equal(decimal.NewFromInt(152650)))
}

func TestTradeValueUSD(t *testing.T) {
	econ := sampleEconomics()
	usd, err := econ.TradeValueUSD()
	require.NoError(t, err)
	assert.True(t, usd.Equal(econ.TradeValue()))

	econ.Currency = "GBP"
	_, err = econ.TradeValueUSD()
	assert.ErrorIs(t, err, ErrMissingFXRate)

	econ.FXRate = decimal.NewFromFloat(1.25)
	usd, err = econ.TradeValueUSD()
	require.NoError(t, err)
	assert.True(t, usd.Equal(decimal.NewFromInt(187500)))
}

func TestNewTradeDefaults(t *testing.T) {
	trade := NewTrade(TradeTypeStock, "AAPL_US", SideBuy, sampleEconomics())

	assert.NotEmpty(t, trade.TradeID)
	assert.Equal(t, trade.TradeID, trade.Economics.TradeID)
	assert.Equal(t, TradeStatusPending, trade.Status)
	require.NoError(t, trade.Validate())
}

func TestTradeValidate(t *testing.T) {
	trade := NewTrade(TradeTypeStock, "", SideBuy, sampleEconomics())
	assert.Error(t, trade.Validate())

	trade = NewTrade(TradeTypeStock, "AAPL_US", "SHORT", sampleEconomics())
	assert.ErrorIs(t, trade.Validate(), ErrInvalidSide)
}

func TestUpdateStatusAppendsAuditRecord(t *testing.T) {
	trade := NewTrade(TradeTypeBond, "UST_10Y", SideSell, sampleEconomics())

	change := trade.UpdateStatus(TradeStatusFilled, "TRADER_001", "TRADING_SYSTEM", "fully executed")

	assert.Equal(t, TradeStatusFilled, trade.Status)
	require.Len(t, trade.StatusHistory, 1)
	assert.Equal(t, TradeStatusPending, change.FromStatus)
	assert.Equal(t, TradeStatusFilled, change.ToStatus)
	assert.Equal(t, trade.TradeID, change.TradeID)
	assert.True(t, change.VerifyHash())
}

func TestStatusChangeHashDetectsTampering(t *testing.T) {
	change := NewTradeStatusChange("T-1", TradeStatusPending, TradeStatusFilled, "u", "sys", "")
	require.True(t, change.VerifyHash())

	change.ToStatus = TradeStatusSettled
	assert.False(t, change.VerifyHash())
}

func TestOrderValidate(t *testing.T) {
	order := &Order{
		OrderID:   "O-1",
		Symbol:    "AAPL",
		Side:      SideBuy,
		OrderType: OrderTypeMarket,
		Quantity:  100,
	}
	require.NoError(t, order.Validate())

	order.Quantity = 0
	assert.ErrorIs(t, order.Validate(), ErrInvalidQuantity)

	order.Quantity = 100
	order.OrderType = OrderTypeLimit
	assert.ErrorIs(t, order.Validate(), ErrMissingLimit)

	order.Price = 150.25
	require.NoError(t, order.Validate())

	order.Side = "HOLD"
	assert.ErrorIs(t, order.Validate(), ErrInvalidSide)

	order.Side = SideSell
	order.OrderType = "STOP"
	assert.ErrorIs(t, order.Validate(), ErrInvalidOrderType)
}

func TestAveragePriceOfFills(t *testing.T) {
	fills := []ExchangeFill{
		{Price: 100, Quantity: 10},
		{Price: 110, Quantity: 30},
	}
	avg, err := AveragePriceOfFills(fills)
	require.NoError(t, err)
	assert.InDelta(t, 107.5, avg, 1e-9)

	_, err = AveragePriceOfFills(nil)
	assert.Error(t, err)
}

func TestInstrumentValidate(t *testing.T) {
	inst := &Instrument{
		InstrumentID:   "AAPL_US",
		Ticker:         "AAPL",
		Name:           "Apple Inc.",
		InstrumentType: InstrumentTypeStock,
		Currency:       "USD",
		Exchange:       "NASDAQ",
		ISIN:           "US0378331005",
	}
	require.NoError(t, inst.Validate())

	bond := &Instrument{
		InstrumentID:   "UST_10Y",
		Ticker:         "UST10Y",
		InstrumentType: InstrumentTypeBond,
		ISIN:           "US912810TM64",
	}
	assert.Error(t, bond.Validate()) // missing maturity and face value

	bond.MaturityDate = "2033-05-15"
	bond.FaceValue = decimal.NewFromInt(1000)
	require.NoError(t, bond.Validate())
}
