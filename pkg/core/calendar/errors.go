package calendar

import "errors"

// Recalculation failure kinds, matched with errors.Is
var (
	ErrStartAfterHorizon  = errors.New("start date after horizon")
	ErrInsufficientDates  = errors.New("insufficient dates from start")
	ErrQuotaUnreachable   = errors.New("quota unreachable")
	ErrNoWeekdays         = errors.New("no weekdays selected")
	ErrCannotFillWeekdays = errors.New("cannot fill quota with weekdays")
)

// RecalcError is a recoverable recalculation failure carrying a user-facing message
type RecalcError struct {
	Kind    error
	Message string
}

func (e *RecalcError) Error() string {
	return e.Message
}

func (e *RecalcError) Unwrap() error {
	return e.Kind
}

func recalcError(kind error, message string) *RecalcError {
	return &RecalcError{Kind: kind, Message: message}
}
