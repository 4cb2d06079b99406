package model

import "time"

const EnrollmentStatusActive = "active"

// Enrollment grants a user access to a course. At most one row exists per
// (user_id, course_id).
type Enrollment struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"not null;uniqueIndex:idx_enrollments_user_course" json:"user_id"`
	CourseID   int64     `gorm:"not null;uniqueIndex:idx_enrollments_user_course" json:"course_id"`
	Status     string    `gorm:"not null;size:20;default:'active'" json:"status"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`
	OrderID    *string   `gorm:"size:64;index" json:"order_id,omitempty"`
	CreatedAt  time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Enrollment) TableName() string {
	return "enrollments"
}
