package settlement

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fintechforge/forge-api/internal/civiltime"
	"github.com/fintechforge/forge-api/internal/clearing"
	"github.com/fintechforge/forge-api/internal/types"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateSettlement(settlement *Settlement) error {
	return d.db.Create(settlement).Error
}

func (d *Database) GetSettlement(settlementID string) (*Settlement, error) {
	var settlement Settlement
	if err := d.db.Where("settlement_id = ?", settlementID).First(&settlement).Error; err != nil {
		return nil, err
	}
	return &settlement, nil
}

func (d *Database) GetSettlementByTradeID(tradeID string) (*Settlement, error) {
	var settlement Settlement
	if err := d.db.Where("trade_id = ?", tradeID).First(&settlement).Error; err != nil {
		return nil, err
	}
	return &settlement, nil
}

func (d *Database) UpdateSettlement(settlement *Settlement) error {
	return d.db.Save(settlement).Error
}

func (d *Database) UpdateSettlementStatus(settlementID string, status string) error {
	result := d.db.Model(&Settlement{}).
		Where("settlement_id = ?", settlementID).
		Updates(map[string]interface{}{
			"settlement_status": status,
			"updated_at":       time.Now(),
		})
	
	if result.Error != nil {
		return result.Error
	}
	
	if result.RowsAffected == 0 {
		return errors.New("settlement not found")
	}
	
	return nil
}

func (d *Database) GetPendingSettlements() ([]Settlement, error) {
	var settlements []Settlement
	if err := d.db.Where("settlement_status = ?", StatusPending).Find(&settlements).Error; err != nil {
		return nil, err
	}
	return settlements, nil
}

// GetOpenSettlements returns settlements still moving through the
// lifecycle (pending or settling).
func (d *Database) GetOpenSettlements() ([]Settlement, error) {
	var settlements []Settlement
	if err := d.db.Where("settlement_status IN ?", []string{StatusPending, StatusSettling}).
		Find(&settlements).Error; err != nil {
		return nil, err
	}
	return settlements, nil
}

func (d *Database) GetClientSettlements(clientID string) ([]Settlement, error) {
	var settlements []Settlement
	if err := d.db.Where("client_id = ?", clientID).Order("created_at DESC").Find(&settlements).Error; err != nil {
		return nil, err
	}
	return settlements, nil
}

// GetSettlementsByDateRange filters on the civil settlement date.
// Dates are stored as ISO-8601 text, so string comparison sorts
// chronologically.
func (d *Database) GetSettlementsByDateRange(startDate, endDate civiltime.Date) ([]Settlement, error) {
	var settlements []Settlement
	if err := d.db.Where("settlement_date BETWEEN ? AND ?", startDate.String(), endDate.String()).
		Order("settlement_date DESC").
		Find(&settlements).Error; err != nil {
		return nil, err
	}
	return settlements, nil
}

// AdvanceTradeStatus transitions the trade ledger entry and appends a
// sealed audit record in one transaction. Returns
// gorm.ErrRecordNotFound when no ledger entry exists for the trade.
func (d *Database) AdvanceTradeStatus(tradeID, status, system, reason string) error {
	return d.advanceTrade(tradeID, status, system, reason, nil)
}

// ConfirmTrade marks the ledger entry CONFIRMED and stamps the civil
// trade and settlement dates into its economics.
func (d *Database) ConfirmTrade(tradeID, tradeDate, settlementDate string) error {
	return d.advanceTrade(tradeID, types.TradeStatusConfirmed, "SETTLEMENT", "settlement instructed",
		map[string]interface{}{
			"econ_trade_date":      tradeDate,
			"econ_settlement_date": settlementDate,
		})
}

func (d *Database) advanceTrade(tradeID, status, system, reason string, extra map[string]interface{}) error {
	var trade types.Trade
	if err := d.db.Where("trade_id = ?", tradeID).First(&trade).Error; err != nil {
		return err
	}
	change := trade.UpdateStatus(status, "SYSTEM", system, reason)

	updates := map[string]interface{}{"status": status, "updated_at": trade.UpdatedAt}
	for column, value := range extra {
		updates[column] = value
	}

	tx := d.db.Begin()
	if err := tx.Error; err != nil {
		return err
	}
	if err := tx.Model(&types.Trade{}).Where("trade_id = ?", tradeID).Updates(updates).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Create(&change).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// GetTradeByID retrieves a trade ledger entry with its status history.
func (d *Database) GetTradeByID(tradeID string) (*types.Trade, error) {
	var trade types.Trade
	if err := d.db.Preload("StatusHistory").Where("trade_id = ?", tradeID).First(&trade).Error; err != nil {
		return nil, err
	}
	return &trade, nil
}

// GetExecutionByID retrieves execution details by ID
func (d *Database) GetExecutionByID(executionID string) (*types.Execution, error) {
	var execution types.Execution
	if err := d.db.Where("execution_id = ?", executionID).First(&execution).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch execution: %w", err)
	}
	return &execution, nil
}

// GetOrderByID retrieves order details by ID
func (d *Database) GetOrderByID(orderID string) (*types.Order, error) {
	var order types.Order
	if err := d.db.Where("order_id = ?", orderID).First(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return &order, nil
}

// GetClearingByTradeID retrieves clearing details by trade ID
func (d *Database) GetClearingByTradeID(tradeID string) (*clearing.Clearing, error) {
	var clearingRecord clearing.Clearing
	if err := d.db.Where("trade_id = ?", tradeID).First(&clearingRecord).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch clearing: %w", err)
	}
	return &clearingRecord, nil
} 