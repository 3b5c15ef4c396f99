// Package entity defines the domain models for the symbollist feature.
package entity

import "time"

// Symbol is one row of the company reference table.
// SortKey keeps the row order of the imported file so listings and
// duplicate resolution follow the source order.
type Symbol struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:32;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	SortKey   int       `gorm:"not null;default:0;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
