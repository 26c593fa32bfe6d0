package types

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Instrument types.
const (
	InstrumentTypeStock    = "STOCK"
	InstrumentTypeBond     = "BOND"
	InstrumentTypeETF      = "ETF"
	InstrumentTypeMoneyMkt = "MONEY_MARKET"
	InstrumentTypeIRS      = "IRS"
	InstrumentTypeCDS      = "CDS"
	InstrumentTypeOption   = "OPTION"
	InstrumentTypeFuture   = "FUTURE"
	InstrumentTypeForward  = "FORWARD"
)

// Day-count bases.
const (
	DayBasisActual360    = "ACTUAL_360"
	DayBasisActual365    = "ACTUAL_365"
	DayBasisActualActual = "ACTUAL_ACTUAL"
	DayBasisThirty360    = "THIRTY_360"
	DayBasisThirty365    = "THIRTY_365"
)

// Date-roll conventions for coupon and payment schedules.
const (
	RollModifiedFollowing = "MODIFIED_FOLLOWING"
	RollFollowing         = "FOLLOWING"
	RollPreceding         = "PRECEDING"
	RollModifiedPreceding = "MODIFIED_PRECEDING"
)

// Instrument is a listed instrument record (stock, bond, ETF).
type Instrument struct {
	gorm.Model     `json:"-"`
	InstrumentID   string          `gorm:"uniqueIndex" json:"instrument_id"`
	Ticker         string          `json:"ticker"`
	Name           string          `json:"name"`
	InstrumentType string          `json:"instrument_type"`
	Currency       string          `json:"currency"`
	Exchange       string          `json:"exchange"`
	ISIN           string          `json:"isin"`
	CUSIP          string          `json:"cusip,omitempty"`
	FaceValue      decimal.Decimal `json:"face_value,omitempty"`
	CouponRate     decimal.Decimal `json:"coupon_rate,omitempty"`
	DayBasis       string          `json:"day_basis,omitempty"`
	MaturityDate   string          `json:"maturity_date,omitempty"` // ISO-8601 civil date
	IssueDate      string          `json:"issue_date,omitempty"`
	Issuer         string          `json:"issuer,omitempty"`
	Sector         string          `json:"sector,omitempty"`
	Country        string          `json:"country,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Validate checks the instrument's required fields, with bond-specific
// rules on top of the common ones.
func (i *Instrument) Validate() error {
	if i.InstrumentID == "" {
		return errors.New("instrument_id is required")
	}
	if i.Ticker == "" {
		return errors.New("ticker is required")
	}
	if i.ISIN == "" {
		return errors.New("isin is required")
	}
	if i.InstrumentType == InstrumentTypeBond {
		if i.MaturityDate == "" {
			return errors.New("maturity_date is required for bonds")
		}
		if i.FaceValue.IsZero() {
			return errors.New("face_value is required for bonds")
		}
	}
	return nil
}
