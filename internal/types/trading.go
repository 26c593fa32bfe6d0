package types

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Order sides and types.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	OrderTypeMarket = "MARKET"
	OrderTypeLimit  = "LIMIT"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrMissingLimit     = errors.New("limit_price is required for LIMIT orders")
	ErrInvalidSide      = errors.New("side must be BUY or SELL")
	ErrInvalidOrderType = errors.New("order_type must be MARKET or LIMIT")
)

type Order struct {
	gorm.Model         `json:"-"`
	OrderID            string    `gorm:"uniqueIndex" json:"order_id"`
	ClientID           string    `json:"client_id"`
	InstrumentID       string    `json:"instrument_id"`
	Symbol             string    `json:"symbol"`
	Side               string    `json:"side"`       // BUY or SELL
	OrderType          string    `json:"order_type"` // MARKET or LIMIT
	Quantity           float64   `json:"quantity"`
	Price              float64   `json:"price"`
	Currency           string    `json:"currency"`
	ExecutionTimezone  string    `json:"execution_timezone"`  // IANA identifier of the venue
	SettlementTimezone string    `json:"settlement_timezone"` // IANA identifier of the settlement market
	Status             string    `json:"status"`              // PENDING, FILLED, CANCELLED
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Validate checks order invariants before acceptance.
func (o *Order) Validate() error {
	if o.Quantity <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidQuantity, o.Quantity)
	}
	if o.Side != SideBuy && o.Side != SideSell {
		return fmt.Errorf("%w: got %q", ErrInvalidSide, o.Side)
	}
	switch o.OrderType {
	case OrderTypeMarket:
	case OrderTypeLimit:
		if o.Price <= 0 {
			return ErrMissingLimit
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidOrderType, o.OrderType)
	}
	return nil
}

type ExchangeFill struct {
	gorm.Model   `json:"-"`
	FillID       string    `gorm:"uniqueIndex" json:"fill_id"`
	ExecutionID  string    `json:"execution_id"`
	ExchangeID   string    `json:"exchange_id"`
	ExchangeName string    `json:"exchange_name"`
	Price        float64   `json:"price"`
	Quantity     float64   `json:"quantity"`
	FeeRate      float64   `json:"fee_rate"`
	FeeAmount    float64   `json:"fee_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

type Execution struct {
	gorm.Model    `json:"-"`
	ExecutionID   string         `gorm:"uniqueIndex" json:"execution_id"`
	OrderID       string         `json:"order_id"`
	TotalQuantity float64        `json:"total_quantity"`
	AveragePrice  float64        `json:"average_price"`
	Side          string         `json:"side"`
	Status        string         `json:"status"` // PENDING, COMPLETED, FAILED
	Fills         []ExchangeFill `json:"fills,omitempty" gorm:"foreignKey:ExecutionID"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// AveragePriceOfFills computes the volume-weighted average price over
// a set of fills.
func AveragePriceOfFills(fills []ExchangeFill) (float64, error) {
	if len(fills) == 0 {
		return 0, errors.New("no fills provided")
	}
	var totalQty, totalPxQty float64
	for _, f := range fills {
		totalQty += f.Quantity
		totalPxQty += f.Price * f.Quantity
	}
	if totalQty == 0 {
		return 0, errors.New("fills carry zero total quantity")
	}
	return totalPxQty / totalQty, nil
}
