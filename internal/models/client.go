package models

import (
	"time"

	"gorm.io/gorm"
)

type Client struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	Address   string         `gorm:"type:text" json:"address"`
	Active    bool           `gorm:"not null;default:true" json:"active"`
	CreatorID uint64         `gorm:"not null" json:"creator_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator User   `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Tasks   []Task `gorm:"foreignKey:ClientID" json:"tasks,omitempty"`
}
