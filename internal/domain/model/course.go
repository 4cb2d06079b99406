package model

import "time"

// Course is the catalog data checkout reads. The catalog is owned elsewhere.
type Course struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	InstructorID int64     `gorm:"not null;index" json:"instructor_id"`
	Title        string    `gorm:"not null;size:255" json:"title"`
	Price        int64     `gorm:"not null;default:0" json:"price"`
	IsPublished  bool      `gorm:"not null;default:true" json:"is_published"`
	CreatedAt    time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Course) TableName() string {
	return "courses"
}

// IsFree reports whether the course needs no payment at all.
func (c *Course) IsFree() bool {
	return c.Price <= 0
}

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// PromoCode is a discount rule applied at checkout.
type PromoCode struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code          string     `gorm:"uniqueIndex;not null;size:64" json:"code"`
	DiscountType  string     `gorm:"not null;size:20" json:"discount_type"`
	DiscountValue int64      `gorm:"not null" json:"discount_value"`
	MinCartValue  int64      `gorm:"not null;default:0" json:"min_cart_value"`
	MaxUses       int        `gorm:"not null;default:0" json:"max_uses"`
	UsedCount     int        `gorm:"not null;default:0" json:"used_count"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time  `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PromoCode) TableName() string {
	return "promo_codes"
}
