package models

import (
	"time"

	"github.com/google/uuid"
)

type VerificationToken struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Identifier string     `gorm:"type:varchar(255);not null;index"`
	Token      string     `gorm:"type:varchar(128);not null;uniqueIndex"`
	Purpose    string     `gorm:"type:varchar(30);not null"`
	ExpiresAt  time.Time  `gorm:"not null;index"`
	ConsumedAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt  time.Time
}
