package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrCourseNotFound is returned when the requested course does not exist or is unpublished
	ErrCourseNotFound = errors.New("course not found")
	// ErrAlreadyEnrolled is returned when the user already has an enrollment for the course
	ErrAlreadyEnrolled = errors.New("you are already enrolled in this course")
	// ErrSelfEnrollment is returned when an instructor tries to buy their own course
	ErrSelfEnrollment = errors.New("instructors cannot enroll in their own course")
	// ErrInvalidDonationAmount is returned for non-positive donation amounts
	ErrInvalidDonationAmount = errors.New("donation amount must be greater than zero")
)

// PromoInvalidError is returned when a promo code cannot be applied
type PromoInvalidError struct {
	Code   string
	Reason string
}

func (e *PromoInvalidError) Error() string {
	return fmt.Sprintf("promo code %q is not valid: %s", e.Code, e.Reason)
}

// NewPromoInvalidError creates a new PromoInvalidError
func NewPromoInvalidError(code, reason string) *PromoInvalidError {
	return &PromoInvalidError{Code: code, Reason: reason}
}

// AmountMismatchError is returned when the client's final amount disagrees
// with the amount computed on the server
type AmountMismatchError struct {
	Expected int64
	Provided int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("final amount mismatch: expected %d, got %d", e.Expected, e.Provided)
}
