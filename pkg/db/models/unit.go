package models

import (
	"time"

	"github.com/google/uuid"
)

// Unit is a measurement unit referenced by products and sold lines.
type Unit struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Abbrev    string    `gorm:"column:abbrev;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
