package types

import "time"

// ClearingResponse is the client-side view of a clearing result.
type ClearingResponse struct {
	ClearingID       string    `json:"clearing_id"`
	ClearingStatus   string    `json:"clearing_status"`
	MarginRequired   float64   `json:"margin_required"`
	NetPositions     float64   `json:"net_positions"`
	SettlementAmount float64   `json:"settlement_amount"`
	Timestamp        time.Time `json:"timestamp"`
}

// SettlementResponse is the client-side view of a settlement. Civil
// dates come over the wire as ISO-8601 strings.
type SettlementResponse struct {
	SettlementID      string    `json:"settlement_id"`
	TradeID           string    `json:"trade_id"`
	SettlementStatus  string    `json:"settlement_status"`
	Jurisdiction      string    `json:"jurisdiction"`
	SettlementDays    int       `json:"settlement_days"`
	TradeDate         string    `json:"trade_date"`
	SettlementDate    string    `json:"settlement_date"`
	FinalAmount       float64   `json:"final_amount"`
	Currency          string    `json:"currency"`
	SettlementAccount string    `json:"settlement_account"`
	Timestamp         time.Time `json:"timestamp"`
}
