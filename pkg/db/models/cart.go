package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is the mutable draft owned by exactly one of UserID or SessionID.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex"`
	SessionID *string    `gorm:"column:session_id;uniqueIndex"`
	Lines     []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// FindLine returns the line with the given id.
func (c *Cart) FindLine(lineID uuid.UUID) (*CartLine, bool) {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

// FindLineFor returns the line matching the (product, size) pair.
func (c *Cart) FindLineFor(productID uuid.UUID, size string) (*CartLine, bool) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID && c.Lines[i].Size == size {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

// NextPosition is the position a newly appended line takes.
func (c *Cart) NextPosition() int {
	next := 0
	for _, line := range c.Lines {
		if line.Position >= next {
			next = line.Position + 1
		}
	}
	return next
}
