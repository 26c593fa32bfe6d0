package trading

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fintechforge/forge-api/internal/auth"
	"github.com/fintechforge/forge-api/internal/civiltime"
	"github.com/fintechforge/forge-api/internal/exchange"
	"github.com/fintechforge/forge-api/internal/types"
	"github.com/fintechforge/forge-api/pkg/response"
)

// Service handles trading operations and order management
type Service struct {
	db *Database
}

// NewService creates a new trading service with the given database connection
func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db: NewDatabase(gormDB),
	}
}

// CreateOrder creates a new order with idempotency support
// It checks for existing orders with the same idempotency key and returns the existing order if found
// Parameters:
//   - order: The order to create
//   - idempotencyKey: Unique key to prevent duplicate order creation
func (s *Service) CreateOrder(order *types.Order, idempotencyKey string) error {
	// Check for existing idempotency record
	record, err := s.db.GetIdempotencyRecord(idempotencyKey)

	// If record exists and hasn't expired
	if err == nil && record.ExpiresAt.After(time.Now()) && record != nil {
		// Return existing order
		existingOrder, err := s.db.GetOrder(record.ResourceID)
		if err != nil {
			return err
		}
		if existingOrder == nil {
			return errors.New("order not found")
		}
		*order = *existingOrder
		return nil
	}

	applyOrderDefaults(order)
	if err := order.Validate(); err != nil {
		return err
	}
	// Both timezones must resolve before the order is accepted; a bad
	// identifier discovered at settlement time is too late.
	if _, err := civiltime.LoadLocation(order.ExecutionTimezone); err != nil {
		return err
	}
	if _, err := civiltime.LoadLocation(order.SettlementTimezone); err != nil {
		return err
	}

	// Prepare new order
	order.OrderID = uuid.New().String()
	order.Status = "PENDING"
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	return s.db.CreateOrderWithIdempotency(order, idempotencyKey)
}

// applyOrderDefaults fills the optional fields clients usually omit:
// market orders in USD, executed and settled on the New York calendar.
func applyOrderDefaults(order *types.Order) {
	if order.OrderType == "" {
		order.OrderType = types.OrderTypeMarket
	}
	if order.InstrumentID == "" {
		order.InstrumentID = order.Symbol
	}
	if order.Currency == "" {
		order.Currency = "USD"
	}
	if order.ExecutionTimezone == "" {
		order.ExecutionTimezone = "America/New_York"
	}
	if order.SettlementTimezone == "" {
		order.SettlementTimezone = order.ExecutionTimezone
	}
}

// GetOrder retrieves an order by its ID
func (s *Service) GetOrder(orderID string) (*types.Order, error) {
	return s.db.GetOrder(orderID)
}

// GetOrderByOrderIDAndClientID retrieves an order by its ID and client ID
func (s *Service) GetOrderByOrderIDAndClientID(orderID, clientID string) (*types.Order, error) {
	return s.db.GetOrderByOrderIDAndClientID(orderID, clientID)
}

// ExecuteOrder executes an existing order with idempotency support
// It routes the order to available exchanges and records the execution results
// Parameters:
//   - orderID: ID of the order to execute
//   - idempotencyKey: Unique key to prevent duplicate execution
func (s *Service) ExecuteOrder(orderID string, idempotencyKey string) (*types.Execution, error) {
	// Check for existing idempotency record
	record, err := s.db.GetIdempotencyRecord(idempotencyKey)

	// If record exists and hasn't expired
	if err == nil && record.ExpiresAt.After(time.Now()) && record != nil {
		// Return existing execution
		existingExecution, err := s.db.GetExecution(record.ResourceID)
		if err != nil {
			return nil, err
		}
		return existingExecution, nil
	}

	order, err := s.db.GetOrder(orderID)
	if err != nil || order == nil {
		return nil, err
	}

	// Use the mock exchange system to execute the order
	execution, err := exchange.ExecuteOrderAcrossExchanges(order)
	if err != nil {
		return nil, err
	}

	// Set execution ID
	execution.ExecutionID = uuid.New().String()
	for i := range execution.Fills {
		execution.Fills[i].ExecutionID = execution.ExecutionID
	}
	// The execution timestamp is the trade's canonical instant; settlement
	// derives everything from it, so record it in UTC.
	execution.CreatedAt = time.Now().UTC()

	// Save the execution to database with idempotency
	if err := s.db.CreateExecutionWithIdempotency(execution, idempotencyKey); err != nil {
		return nil, err
	}

	// Update order status
	order.Status = "FILLED"
	order.UpdatedAt = time.Now()
	// QUESTION: do we need toupdate the order fill price?
	if err := s.db.UpdateOrder(order); err != nil {
		return nil, err
	}

	// Open the trade ledger entry for the downstream lifecycle. The
	// execution itself is already committed, so a ledger failure is
	// logged rather than surfaced to the caller.
	if err := s.recordTradeLedgerEntry(order, execution); err != nil {
		log.Error().
			Err(err).
			Str("execution_id", execution.ExecutionID).
			Str("service", "trading").
			Msg("failed to record trade ledger entry")
	}

	return execution, nil
}

// recordTradeLedgerEntry creates the trade ledger entry for an
// execution, keyed by the execution ID so clearing and settlement can
// advance it by trade ID. The PENDING to FILLED transition is captured
// as the first sealed status change.
func (s *Service) recordTradeLedgerEntry(order *types.Order, execution *types.Execution) error {
	economics := types.TradeEconomics{
		TradeID:        execution.ExecutionID,
		NotionalAmount: decimal.NewFromFloat(execution.TotalQuantity),
		Price:          decimal.NewFromFloat(execution.AveragePrice),
		Currency:       order.Currency,
	}

	trade := types.NewTrade(types.TradeTypeStock, order.InstrumentID, order.Side, economics)
	trade.SourceSystem = "TRADING"
	trade.TraderID = order.ClientID
	trade.UpdateStatus(types.TradeStatusFilled, "SYSTEM", "TRADING", "order executed across exchanges")

	return s.db.CreateTrade(trade)
}

// GinHandlers contains HTTP handlers for trading endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for trading endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateOrderHandler handles POST requests to create new orders
// Requires a valid JWT token and idempotency key in headers
// Request body should contain the order details
func (h *GinHandlers) CreateOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get idempotency key from header
		idempotencyKey := c.GetHeader("Idempotency-Key")
		if idempotencyKey == "" {
			response.BadRequest(c, "Idempotency-Key header is required")
			return
		}

		var order types.Order
		if err := c.ShouldBindJSON(&order); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		if err := h.service.CreateOrder(&order, idempotencyKey); err != nil {
			switch {
			case errors.Is(err, types.ErrInvalidQuantity),
				errors.Is(err, types.ErrMissingLimit),
				errors.Is(err, types.ErrInvalidSide),
				errors.Is(err, types.ErrInvalidOrderType),
				errors.Is(err, civiltime.ErrUnknownTimezone):
				response.BadRequest(c, err.Error())
			default:
				response.InternalError(c, err.Error())
			}
			return
		}

		response.Success(c, order)
	}
}

// GetOrderStatusHandler handles GET requests to retrieve order status
// Requires a valid JWT token
// URL parameter: order_id
func (h *GinHandlers) GetOrderStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get claims from context
		claims, exists := c.Get("claims")
		if !exists {
			response.Unauthorized(c, "Missing authentication claims")
			return
		}

		// Get client ID from claims
		clientID := auth.GetClientID(claims)
		if clientID == "" {
			response.Unauthorized(c, "Invalid client ID in token")
			return
		}

		orderID := c.Param("order_id")
		if orderID == "" {
			response.BadRequest(c, "Order ID is required")
			return
		}

		order, err := h.service.GetOrderByOrderIDAndClientID(orderID, clientID)
		if err != nil || order == nil {
			response.NotFound(c, "Order not found")
			return
		}

		response.Success(c, order)
	}
}

// ExecuteOrderHandler handles POST requests to execute orders
// Requires internal authentication and idempotency key
// URL parameter: order_id
func (h *GinHandlers) ExecuteOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get idempotency key from header
		idempotencyKey := c.GetHeader("Idempotency-Key")
		if idempotencyKey == "" {
			response.BadRequest(c, "Idempotency-Key header is required")
			return
		}

		orderID := c.Param("order_id")

		execution, err := h.service.ExecuteOrder(orderID, idempotencyKey)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}

		response.Success(c, execution)
	}
}
