package models

import "time"

// BaseModel replaces gorm.Model: rows are removed for real so that the
// foreign key cascades and SET NULL rules take effect.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
