package settlement

import (
	"time"

	"gorm.io/gorm"

	"github.com/fintechforge/forge-api/internal/civiltime"
)

type Settlement struct {
	gorm.Model         `json:"-"`
	SettlementID       string    `gorm:"uniqueIndex" json:"settlement_id"`
	TradeID            string    `json:"trade_id"`
	ClientID           string    `json:"client_id"`
	SettlementStatus   string    `json:"settlement_status"` // PENDING, SETTLING, SETTLED, FAILED
	ExecutionTimezone  string    `json:"execution_timezone"`
	SettlementTimezone string    `json:"settlement_timezone"`
	Jurisdiction       string    `json:"jurisdiction"`
	SettlementDays     int       `json:"settlement_days"`
	ExecutedAt         time.Time `json:"executed_at"` // canonical UTC instant
	TradeDate          string    `json:"trade_date"`  // civil date in settlement timezone, ISO-8601
	SettlementDate     string    `json:"settlement_date"`
	FinalAmount        float64   `json:"final_amount"`
	Currency           string    `json:"currency"`
	SettlementAccount  string    `json:"settlement_account"`
	ClearingID         string    `json:"clearing_id"`
	ExecutionID        string    `json:"execution_id"`
	ExecutedPrice      float64   `json:"executed_price"`
	ExecutedQuantity   int64     `json:"executed_quantity"`
	SettlementFees     float64   `json:"settlement_fees"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// SettlementDateCivil parses the stored settlement date. The column is
// ISO-8601 text so the civil date survives the round trip through the
// database without picking up a timezone.
func (s *Settlement) SettlementDateCivil() (civiltime.Date, error) {
	return civiltime.ParseDate(s.SettlementDate)
}

type SettlementResponse struct {
	SettlementID      string              `json:"settlement_id"`
	TradeID           string              `json:"trade_id"`
	ClientID          string              `json:"client_id"`
	SettlementStatus  string              `json:"settlement_status"`
	TradeTime         TradeTime           `json:"trade_time"`
	ExecutionLocal    civiltime.CivilTime `json:"execution_local_time"`
	SettlementLocal   civiltime.CivilTime `json:"settlement_local_time"`
	Jurisdiction      string              `json:"jurisdiction"`
	SettlementDays    int                 `json:"settlement_days"`
	TradeDate         civiltime.Date      `json:"trade_date"`
	SettlementDate    civiltime.Date      `json:"settlement_date"`
	FinalAmount       float64             `json:"final_amount"`
	Currency          string              `json:"currency"`
	SettlementAccount string              `json:"settlement_account"`
	ExecutedPrice     float64             `json:"executed_price"`
	ExecutedQuantity  int64               `json:"executed_quantity"`
	SettlementFees    float64             `json:"settlement_fees"`
	Timestamp         time.Time           `json:"timestamp"`
}

// PreviewRequest asks for a settlement date without touching any trade
// state: a local wall-clock time, the two timezones, and the day count.
type PreviewRequest struct {
	LocalTime          string `json:"local_time" binding:"required"` // 2006-01-02T15:04:05
	ExecutionTimezone  string `json:"execution_timezone" binding:"required"`
	SettlementTimezone string `json:"settlement_timezone" binding:"required"`
	SettlementDays     int    `json:"settlement_days"`
}

type PreviewResponse struct {
	TradeTime        TradeTime           `json:"trade_time"`
	ExecutionLocal   civiltime.CivilTime `json:"execution_local_time"`
	ExecutionOffset  int                 `json:"execution_utc_offset_seconds"`
	SettlementLocal  civiltime.CivilTime `json:"settlement_local_time"`
	SettlementOffset int                 `json:"settlement_utc_offset_seconds"`
	Jurisdiction     string              `json:"jurisdiction"`
	TradeDate        civiltime.Date      `json:"trade_date"`
	SettlementDate   civiltime.Date      `json:"settlement_date"`
}

// HolidayRequest registers one holiday on a jurisdiction's calendar.
type HolidayRequest struct {
	Date string `json:"date" binding:"required"` // 2006-01-02
}
