package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// ValidationError rejects operator input before any network call is made.
// Never retriable; the offending value is simply wrong.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

func (e *ValidationError) IsRetriable() bool {
	return false
}

// ExchangeError wraps a failed exchange API call with the operation that
// issued it. Transient by default; order submission errors are marked
// non-retriable because the engine never resubmits an entry.
type ExchangeError struct {
	Op        string // e.g. "create-order", "get-order", "cancel-order"
	Err       error
	Retriable bool
}

func (e *ExchangeError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ExchangeError) IsRetriable() bool {
	return e.Retriable
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// NewExchangeError creates a retriable exchange error
func NewExchangeError(op string, err error) *ExchangeError {
	return &ExchangeError{Op: op, Err: err, Retriable: true}
}

// NewFatalExchangeError creates a non-retriable exchange error
func NewFatalExchangeError(op string, err error) *ExchangeError {
	return &ExchangeError{Op: op, Err: err, Retriable: false}
}

var (
	// ErrFillTimeout is returned when a market order is not confirmed filled
	// within the fill-wait deadline. The rescue path has already run by the
	// time the caller sees it.
	ErrFillTimeout = errors.New("fill confirmation timed out")

	// ErrActionInFlight is returned when a trading action is submitted while
	// another one is still running. The engine is not re-entrant.
	ErrActionInFlight = errors.New("another trading action is in flight")

	// ErrNotActivated is returned when a trading action is attempted before
	// the symbol pipeline (existence, precision, first price) has completed.
	ErrNotActivated = errors.New("symbol is not activated")

	// ErrNoEntry is returned by a manual close when no entry is tracked.
	ErrNoEntry = errors.New("no tracked entry")

	// ErrFlattenFailed is returned when the rescue path confirmed a non-zero
	// executed quantity but could not flatten it. This is a reportable fault:
	// the account holds an unprotected position.
	ErrFlattenFailed = errors.New("failed to flatten partial fill")

	// ErrSymbolNotFound is returned when a symbol is absent from exchange
	// metadata. Not retriable.
	ErrSymbolNotFound = errors.New("symbol not found on exchange")

	// ErrNotConnected is returned when the exchange client has no validated
	// credentials.
	ErrNotConnected = errors.New("exchange client is not connected")
)
