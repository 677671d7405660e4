package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRetriable(t *testing.T) {
	base := errors.New("connection reset")

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", base, false},
		{"transient exchange error", NewExchangeError("get-order", base), true},
		{"fatal exchange error", NewFatalExchangeError("create-order", base), false},
		{"validation error", &ValidationError{Field: "symbol", Reason: "empty"}, false},
		{"wrapped transient", fmt.Errorf("placing order: %w", NewExchangeError("get-order", base)), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetriable(tc.err); got != tc.want {
				t.Errorf("IsRetriable = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExchangeError_Unwrap(t *testing.T) {
	base := errors.New("http 502")
	err := NewExchangeError("exchange-info", base)

	if !errors.Is(err, base) {
		t.Error("exchange error must unwrap to its cause")
	}
	if err.Error() != "exchange-info: http 502" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: "notional_usd", Reason: "must be positive"}
	if err.Error() != "invalid notional_usd: must be positive" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
