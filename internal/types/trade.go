package types

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Trade lifecycle statuses.
const (
	TradeStatusPending   = "PENDING"
	TradeStatusPartial   = "PARTIAL"
	TradeStatusFilled    = "FILLED"
	TradeStatusAffirmed  = "AFFIRMED"
	TradeStatusConfirmed = "CONFIRMED"
	TradeStatusSettled   = "SETTLED"
	TradeStatusFailed    = "FAILED"
	TradeStatusCancelled = "CANCELLED"
)

// Trade types.
const (
	TradeTypeStock  = "STOCK_TRADE"
	TradeTypeBond   = "BOND_TRADE"
	TradeTypeIRS    = "IRS_TRADE"
	TradeTypeCDS    = "CDS_TRADE"
	TradeTypeFX     = "FX_TRADE"
	TradeTypeOption = "OPTION_TRADE"
)

var ErrMissingFXRate = errors.New("fx rate required for non-USD currency conversion")

// TradeEconomics is the immutable economic data of a trade, used for
// valuation. Monetary amounts are decimals, never floats.
type TradeEconomics struct {
	TradeID         string          `json:"trade_id"`
	NotionalAmount  decimal.Decimal `json:"notional_amount"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
	TradeDate       string          `json:"trade_date"`      // ISO-8601 civil date
	SettlementDate  string          `json:"settlement_date"` // ISO-8601 civil date
	AccruedInterest decimal.Decimal `json:"accrued_interest"`
	Commission      decimal.Decimal `json:"commission"`
	Fees            decimal.Decimal `json:"fees"`
	FXRate          decimal.Decimal `json:"fx_rate"` // zero when not a cross-currency trade
}

// TradeValue is notional * price plus accrued interest, commission and
// fees.
func (e TradeEconomics) TradeValue() decimal.Decimal {
	return e.NotionalAmount.Mul(e.Price).
		Add(e.AccruedInterest).
		Add(e.Commission).
		Add(e.Fees)
}

// TradeValueUSD converts the trade value using the recorded FX rate.
// Fails for non-USD trades without one.
func (e TradeEconomics) TradeValueUSD() (decimal.Decimal, error) {
	if e.Currency == "USD" {
		return e.TradeValue(), nil
	}
	if e.FXRate.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("%w: currency %s", ErrMissingFXRate, e.Currency)
	}
	return e.TradeValue().Mul(e.FXRate), nil
}

// TradeStatusChange is an audit record of one status transition,
// carrying a SHA-256 integrity hash over its identifying fields.
type TradeStatusChange struct {
	gorm.Model `json:"-"`
	ChangeID   string    `gorm:"uniqueIndex" json:"change_id"`
	TradeID    string    `gorm:"index" json:"trade_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"user_id"`
	System     string    `json:"system"`
	Reason     string    `json:"reason,omitempty"`
	Hash       string    `json:"hash"`
}

// NewTradeStatusChange builds an audit record and seals it with its
// integrity hash.
func NewTradeStatusChange(tradeID, fromStatus, toStatus, userID, system, reason string) TradeStatusChange {
	c := TradeStatusChange{
		ChangeID:   uuid.New().String(),
		TradeID:    tradeID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Timestamp:  time.Now().UTC(),
		UserID:     userID,
		System:     system,
		Reason:     reason,
	}
	c.Hash = c.ComputeHash()
	return c
}

// ComputeHash derives the integrity hash from the identifying fields.
func (c TradeStatusChange) ComputeHash() string {
	data := fmt.Sprintf("%s%s%s%s%s",
		c.ChangeID, c.TradeID, c.FromStatus, c.ToStatus, c.Timestamp.Format(time.RFC3339Nano))
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// VerifyHash reports whether the record still matches its hash.
func (c TradeStatusChange) VerifyHash() bool {
	return c.Hash == c.ComputeHash()
}

// Trade couples immutable economics with mutable workflow state. The
// economics columns are flattened into the row; status transitions go
// through UpdateStatus so the audit trail stays complete.
type Trade struct {
	gorm.Model   `json:"-"`
	TradeID      string `gorm:"uniqueIndex" json:"trade_id"`
	TradeType    string `json:"trade_type"`
	InstrumentID string `json:"instrument_id"`
	Side         string `json:"side"`

	Economics TradeEconomics `gorm:"embedded;embeddedPrefix:econ_" json:"economics"`

	SourceSystem string    `json:"source_system"`
	TraderID     string    `json:"trader_id"`
	PortfolioID  string    `json:"portfolio_id"`
	Strategy     string    `json:"strategy"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	StatusHistory []TradeStatusChange `gorm:"foreignKey:TradeID;references:TradeID" json:"status_history,omitempty"`
}

// UpdateStatus transitions the trade and appends a sealed audit record.
func (t *Trade) UpdateStatus(newStatus, userID, system, reason string) TradeStatusChange {
	change := NewTradeStatusChange(t.TradeID, t.Status, newStatus, userID, system, reason)
	t.StatusHistory = append(t.StatusHistory, change)
	t.Status = newStatus
	t.UpdatedAt = time.Now()
	return change
}

// NewTrade builds a trade in PENDING status with a fresh ID.
func NewTrade(tradeType, instrumentID, side string, economics TradeEconomics) *Trade {
	id := economics.TradeID
	if id == "" {
		id = uuid.New().String()
		economics.TradeID = id
	}
	now := time.Now()
	return &Trade{
		TradeID:      id,
		TradeType:    tradeType,
		InstrumentID: instrumentID,
		Side:         side,
		Economics:    economics,
		SourceSystem: "SYSTEM",
		Status:       TradeStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks the trade's required fields.
func (t *Trade) Validate() error {
	if t.TradeID == "" {
		return errors.New("trade_id is required")
	}
	if t.InstrumentID == "" {
		return errors.New("instrument_id is required")
	}
	if t.Side != SideBuy && t.Side != SideSell {
		return fmt.Errorf("%w: got %q", ErrInvalidSide, t.Side)
	}
	return nil
}
