package trading

import (
	"time"

	"gorm.io/gorm"
)

// IdempotencyRecord stores a handled request key so retries of the same
// operation return the original resource instead of creating a new one.
type IdempotencyRecord struct {
	gorm.Model
	IdempotencyKey string    `gorm:"uniqueIndex" json:"idempotency_key"`
	ResourceID     string    `json:"resource_id"`
	ResourceType   string    `json:"resource_type"`
	ExpiresAt      time.Time `json:"expires_at"`
}
