package settlement

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/fintechforge/forge-api/internal/bizcal"
	"github.com/fintechforge/forge-api/internal/civiltime"
	"github.com/fintechforge/forge-api/pkg/response"
)

const (
	StatusPending  = "PENDING"
	StatusSettling = "SETTLING"
	StatusSettled  = "SETTLED"
	StatusFailed   = "FAILED"
)

// localTimeLayout is how clients submit wall-clock times: no zone
// suffix, because the zone arrives separately as an IANA identifier.
const localTimeLayout = "2006-01-02T15:04:05"

type Service struct {
	db             *Database
	calc           *Calculator
	settlementDays int
}

// NewService creates a settlement service. settlementDays is the
// default T+N day count applied when settling trades.
func NewService(gormDB *gorm.DB, calc *Calculator, settlementDays int) *Service {
	return &Service{
		db:             NewDatabase(gormDB),
		calc:           calc,
		settlementDays: settlementDays,
	}
}

// SettleTrade handles the settlement process for a trade: it rebuilds
// the trade's TradeTime from the recorded execution instant and the
// order's timezones, derives the business-day settlement date in the
// settlement jurisdiction, and persists the settlement record.
func (s *Service) SettleTrade(tradeID string) (*SettlementResponse, error) {
	logger := log.With().
		Str("trade_id", tradeID).
		Str("service", "settlement").
		Logger()

	logger.Info().Msg("starting settlement process for trade")

	execution, err := s.db.GetExecutionByID(tradeID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch execution details")
		return nil, fmt.Errorf("failed to fetch execution details: %w", err)
	}

	order, err := s.db.GetOrderByID(execution.OrderID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch order details")
		return nil, fmt.Errorf("failed to fetch order details: %w", err)
	}

	clearingDetails, err := s.db.GetClearingByTradeID(tradeID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch clearing details")
		return nil, fmt.Errorf("failed to fetch clearing details: %w", err)
	}

	tradeTime, err := TradeTimeFromInstant(execution.CreatedAt, order.ExecutionTimezone, order.SettlementTimezone)
	if err != nil {
		logger.Error().Err(err).Msg("order carries an invalid timezone")
		return nil, err
	}

	tradeDate, err := tradeTime.TradeDate()
	if err != nil {
		return nil, err
	}
	settlementDate, err := s.calc.SettlementDate(tradeTime, s.settlementDays)
	if err != nil {
		logger.Error().Err(err).Msg("failed to compute settlement date")
		return nil, fmt.Errorf("failed to compute settlement date: %w", err)
	}

	// Settlement fees: 0.1% of total value.
	settlementFees := execution.AveragePrice * execution.TotalQuantity * 0.001

	settlement := &Settlement{
		SettlementID:       "STL_" + uuid.New().String(),
		TradeID:            tradeID,
		ClientID:           order.ClientID,
		SettlementStatus:   StatusPending,
		ExecutionTimezone:  tradeTime.ExecutionTimezone,
		SettlementTimezone: tradeTime.SettlementTimezone,
		Jurisdiction:       JurisdictionFor(tradeTime.SettlementTimezone),
		SettlementDays:     s.settlementDays,
		ExecutedAt:         tradeTime.Timestamp,
		TradeDate:          tradeDate.String(),
		SettlementDate:     settlementDate.String(),
		FinalAmount:        clearingDetails.SettlementAmount,
		Currency:           order.Currency,
		SettlementAccount:  fmt.Sprintf("ACC_%s", order.ClientID),
		ClearingID:         clearingDetails.ClearingID,
		ExecutionID:        execution.ExecutionID,
		ExecutedPrice:      execution.AveragePrice,
		ExecutedQuantity:   int64(execution.TotalQuantity),
		SettlementFees:     settlementFees,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	if err := s.validateSettlement(settlement); err != nil {
		logger.Error().Err(err).Msg("settlement validation failed")
		settlement.SettlementStatus = StatusFailed
		if err := s.db.CreateSettlement(settlement); err != nil {
			logger.Error().Err(err).Msg("failed to save failed settlement record")
			return nil, err
		}
		return nil, fmt.Errorf("settlement validation failed: %w", err)
	}

	if err := s.db.CreateSettlement(settlement); err != nil {
		logger.Error().Err(err).Msg("failed to create settlement record")
		return nil, fmt.Errorf("failed to create settlement record: %w", err)
	}

	// Confirm the trade ledger entry and stamp its civil dates. Trades
	// executed outside this system have no ledger entry.
	if err := s.db.ConfirmTrade(tradeID, settlement.TradeDate, settlement.SettlementDate); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn().Msg("no trade ledger entry to confirm")
		} else {
			logger.Error().Err(err).Msg("failed to confirm trade ledger entry")
		}
	}

	executionLocal, _, _ := tradeTime.ExecutionLocal()
	settlementLocal, _, _ := tradeTime.SettlementLocal()

	logger.Info().
		Str("settlement_id", settlement.SettlementID).
		Str("status", settlement.SettlementStatus).
		Str("trade_date", settlement.TradeDate).
		Str("settlement_date", settlement.SettlementDate).
		Str("jurisdiction", settlement.Jurisdiction).
		Float64("final_amount", settlement.FinalAmount).
		Msg("settlement process completed successfully")

	return &SettlementResponse{
		SettlementID:      settlement.SettlementID,
		TradeID:           settlement.TradeID,
		ClientID:          settlement.ClientID,
		SettlementStatus:  settlement.SettlementStatus,
		TradeTime:         tradeTime,
		ExecutionLocal:    executionLocal,
		SettlementLocal:   settlementLocal,
		Jurisdiction:      settlement.Jurisdiction,
		SettlementDays:    settlement.SettlementDays,
		TradeDate:         tradeDate,
		SettlementDate:    settlementDate,
		FinalAmount:       settlement.FinalAmount,
		Currency:          settlement.Currency,
		SettlementAccount: settlement.SettlementAccount,
		ExecutedPrice:     settlement.ExecutedPrice,
		ExecutedQuantity:  settlement.ExecutedQuantity,
		SettlementFees:    settlement.SettlementFees,
		Timestamp:         time.Now(),
	}, nil
}

// Preview computes a settlement date from a local wall-clock time and
// the two timezones, persisting nothing. This is the stateless face of
// the calculator.
func (s *Service) Preview(req PreviewRequest) (*PreviewResponse, error) {
	parsed, err := time.Parse(localTimeLayout, req.LocalTime)
	if err != nil {
		return nil, fmt.Errorf("invalid local_time %q (want %s): %w", req.LocalTime, localTimeLayout, err)
	}

	tradeTime, err := NewTradeTime(civiltime.FromTime(parsed), req.ExecutionTimezone, req.SettlementTimezone)
	if err != nil {
		return nil, err
	}

	executionLocal, executionOffset, err := tradeTime.ExecutionLocal()
	if err != nil {
		return nil, err
	}
	settlementLocal, settlementOffset, err := tradeTime.SettlementLocal()
	if err != nil {
		return nil, err
	}
	tradeDate, err := tradeTime.TradeDate()
	if err != nil {
		return nil, err
	}
	settlementDate, err := s.calc.SettlementDate(tradeTime, req.SettlementDays)
	if err != nil {
		return nil, err
	}

	return &PreviewResponse{
		TradeTime:        tradeTime,
		ExecutionLocal:   executionLocal,
		ExecutionOffset:  executionOffset,
		SettlementLocal:  settlementLocal,
		SettlementOffset: settlementOffset,
		Jurisdiction:     JurisdictionFor(req.SettlementTimezone),
		TradeDate:        tradeDate,
		SettlementDate:   settlementDate,
	}, nil
}

// RegisterHoliday adds a holiday to a jurisdiction's calendar. Only
// that jurisdiction's settlements are affected.
func (s *Service) RegisterHoliday(jurisdiction string, date civiltime.Date) {
	log.Info().
		Str("service", "settlement").
		Str("jurisdiction", jurisdiction).
		Str("date", date.String()).
		Msg("registering holiday")
	s.calc.Registry().Calendar(jurisdiction).AddHoliday(date)
}

// Holidays lists the registered holidays for a jurisdiction.
func (s *Service) Holidays(jurisdiction string) []civiltime.Date {
	return s.calc.Registry().Calendar(jurisdiction).Holidays()
}

// validateSettlement performs validation checks on the settlement
func (s *Service) validateSettlement(settlement *Settlement) error {
	if settlement.FinalAmount <= 0 {
		return errors.New("invalid settlement amount")
	}
	// ISO-8601 strings compare chronologically.
	if settlement.SettlementDate < settlement.TradeDate {
		return errors.New("settlement date precedes trade date")
	}
	return nil
}

// UpdateSettlementStatus updates the status of a settlement
func (s *Service) UpdateSettlementStatus(settlementID string, status string) error {
	return s.db.UpdateSettlementStatus(settlementID, status)
}

// GetSettlement retrieves a settlement by ID
func (s *Service) GetSettlement(settlementID string) (*Settlement, error) {
	return s.db.GetSettlement(settlementID)
}

// GetClientSettlements retrieves all settlements for a client
func (s *Service) GetClientSettlements(clientID string) ([]Settlement, error) {
	return s.db.GetClientSettlements(clientID)
}

// GetDB exposes the database wrapper for the background processor.
func (s *Service) GetDB() *Database {
	return s.db
}

// GinHandlers contains HTTP handlers for settlement endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

func (h *GinHandlers) SettleTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tradeID := c.Param("trade_id")

		settlementResponse, err := h.service.SettleTrade(tradeID)
		if err != nil && (errors.Is(err, civiltime.ErrUnknownTimezone) || errors.Is(err, bizcal.ErrNoBusinessDayFound)) {
			response.BadRequest(c, err.Error())
			return
		}
		response.Handle(c, settlementResponse, err)
	}
}

func (h *GinHandlers) PreviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PreviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		preview, err := h.service.Preview(req)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		response.Success(c, preview)
	}
}

func (h *GinHandlers) AddHolidayHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		jurisdiction := c.Param("jurisdiction")
		var req HolidayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		date, err := civiltime.ParseDate(req.Date)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		h.service.RegisterHoliday(jurisdiction, date)
		response.Success(c, gin.H{"jurisdiction": jurisdiction, "date": date.String()})
	}
}

func (h *GinHandlers) ListHolidaysHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		jurisdiction := c.Param("jurisdiction")
		response.Success(c, gin.H{
			"jurisdiction": jurisdiction,
			"holidays":     h.service.Holidays(jurisdiction),
		})
	}
}

func (h *GinHandlers) GetSettlementHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		settlementID := c.Param("settlement_id")

		settlement, err := h.service.GetSettlement(settlementID)
		response.Handle(c, settlement, err)
	}
}

func (h *GinHandlers) GetClientSettlementsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetHeader("X-Client-ID")
		if clientID == "" {
			response.BadRequest(c, "client ID is required")
			return
		}

		settlements, err := h.service.GetClientSettlements(clientID)
		response.Handle(c, settlements, err)
	}
}

func (h *GinHandlers) UpdateSettlementStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		settlementID := c.Param("settlement_id")
		var request struct {
			Status string `json:"status" binding:"required"`
		}

		if err := c.ShouldBindJSON(&request); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		if err := h.service.UpdateSettlementStatus(settlementID, request.Status); err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.Success(c, gin.H{"message": "settlement status updated successfully"})
	}
}
