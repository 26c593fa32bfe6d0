package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/fintechforge/forge-api/internal/civiltime"
	"github.com/fintechforge/forge-api/internal/types"
)

type Processor struct {
	db           *Database
	processDelay time.Duration // Time between settlement processing attempts
}

func NewProcessor(db *Database) *Processor {
	return &Processor{
		db:           db,
		processDelay: 5 * time.Minute, // Configurable processing interval
	}
}

// Start begins the settlement processing loop
func (p *Processor) Start(ctx context.Context) {
	logger := log.With().Str("component", "settlement_processor").Logger()
	logger.Info().Msg("starting settlement processor")

	ticker := time.NewTicker(p.processDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down settlement processor")
			return
		case <-ticker.C:
			if err := p.processOpenSettlements(time.Now()); err != nil {
				logger.Error().Err(err).Msg("failed to process open settlements")
			}
		}
	}
}

func (p *Processor) processOpenSettlements(now time.Time) error {
	logger := log.With().Str("component", "settlement_processor").Logger()

	settlements, err := p.db.GetOpenSettlements()
	if err != nil {
		return err
	}

	logger.Info().Int("open_count", len(settlements)).Msg("processing open settlements")

	for _, settlement := range settlements {
		due, err := p.settlementDue(&settlement, now)
		if err != nil {
			logger.Error().
				Err(err).
				Str("settlement_id", settlement.SettlementID).
				Msg("cannot evaluate settlement date")
			continue
		}
		if !due {
			continue
		}

		// Simulate CSD processing steps
		switch settlement.SettlementStatus {
		case StatusPending:
			settlement.SettlementStatus = StatusSettling
			logger.Info().
				Str("settlement_id", settlement.SettlementID).
				Str("settlement_date", settlement.SettlementDate).
				Msg("initiating settlement process")

		case StatusSettling:
			if p.verifySettlement(&settlement) {
				settlement.SettlementStatus = StatusSettled
				logger.Info().
					Str("settlement_id", settlement.SettlementID).
					Msg("settlement completed successfully")

				if err := p.db.AdvanceTradeStatus(settlement.TradeID, types.TradeStatusSettled, "CSD", "settlement completed"); err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						logger.Warn().
							Str("settlement_id", settlement.SettlementID).
							Msg("no trade ledger entry to settle")
					} else {
						logger.Error().
							Err(err).
							Str("settlement_id", settlement.SettlementID).
							Msg("failed to settle trade ledger entry")
					}
				}
			}
		}

		settlement.UpdatedAt = time.Now()
		if err := p.db.UpdateSettlement(&settlement); err != nil {
			logger.Error().
				Err(err).
				Str("settlement_id", settlement.SettlementID).
				Msg("failed to update settlement status")
			continue
		}
	}

	return nil
}

// settlementDue reports whether the settlement date has been reached,
// judged by the civil date in the settlement timezone rather than the
// server-local wall clock.
func (p *Processor) settlementDue(settlement *Settlement, now time.Time) (bool, error) {
	settlementDate, err := settlement.SettlementDateCivil()
	if err != nil {
		return false, err
	}
	today, err := civiltime.DateIn(now, settlement.SettlementTimezone)
	if err != nil {
		return false, err
	}
	return !today.Before(settlementDate), nil
}

// verifySettlement simulates CSD verification process
func (p *Processor) verifySettlement(settlement *Settlement) bool {
	// Simulate various settlement checks:
	// 1. Verify sufficient funds in settlement account
	// 2. Verify security positions
	// 3. Check for any holds or restrictions
	// 4. Validate settlement instructions

	// For simulation, succeed 95% of the time
	return time.Now().UnixNano()%100 < 95
}
