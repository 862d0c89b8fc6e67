package data

import (
	"errors"
	"fmt"
)

var (
	ErrStateNotFound = errors.New("capture state not found")
	ErrCorruptState  = errors.New("capture state is corrupt")
)

// CaptureError describes why one order fragment could not be turned into an Order.
// OrderID is empty when the identifier itself could not be resolved.
type CaptureError struct {
	OrderID string
	Reason  string
	Err     error
}

func NewCaptureError(orderID string, err error) *CaptureError {
	return &CaptureError{
		OrderID: orderID,
		Reason:  err.Error(),
		Err:     err,
	}
}

func (e *CaptureError) Error() string {
	if e.OrderID == "" {
		return fmt.Sprintf("capture failed: %s", e.Reason)
	}
	return fmt.Sprintf("capture of order %s failed: %s", e.OrderID, e.Reason)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}
