package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document is a key-value JSON record. It backs the keyword cache, the
// webhook audit log and the subscription metrics.
type Document struct {
	Key       string         `json:"key" gorm:"primaryKey"`
	Value     datatypes.JSON `json:"value"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
