package errors

import (
	"errors"
	"fmt"
)

var (
	// Auction errors
	ErrAuctionNotFound        = errors.New("auction not found")
	ErrAuctionNotOpen         = errors.New("auction is not open for changes")
	ErrNotSeller              = errors.New("only the seller may perform this action")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrOptimisticLockFailed   = errors.New("optimistic lock conflict")

	// Bid errors
	ErrSelfBid       = errors.New("bidders cannot bid on their own auction")
	ErrBiddingClosed = errors.New("cannot accept bids on this auction at this time")
	ErrInvalidAmount = errors.New("bid amount must be greater than zero")
	ErrBidNotFound   = errors.New("bid not found")

	// Invoice / payment errors
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrPaymentNotFound = errors.New("payment transaction not found")
	ErrInvoiceExists   = errors.New("invoice already generated for this auction and bidder")
	ErrPaymentSettled  = errors.New("payment already settled for this invoice")
	ErrGatewayTimeout  = errors.New("payment gateway request timeout")
	ErrGatewayDeclined = errors.New("payment declined by gateway")

	// Lock errors
	ErrLockAcquisitionFailed = errors.New("failed to acquire lock")
	ErrLockNotHeld           = errors.New("lock not held")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
