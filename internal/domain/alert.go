package domain

import "time"

// AlertKind classifies operator-facing alerts.
type AlertKind string

const (
	// AlertProtectionFailed means a stop-loss or take-profit leg could not be
	// placed. The entry stays open without that protection; a human must
	// intervene.
	AlertProtectionFailed AlertKind = "PROTECTION_FAILED"

	// AlertFlattenFailed means the rescue path could not close a confirmed
	// partial fill after the fill-wait timeout.
	AlertFlattenFailed AlertKind = "FLATTEN_FAILED"

	// AlertStreamDown means the price stream worker terminated and the
	// symbol was marked inactive.
	AlertStreamDown AlertKind = "STREAM_DOWN"
)

// Alert is a structured operator notification. The engine and controller
// push these onto an explicit channel instead of burying them in logs, so
// the presentation layer can raise them as alert-worthy conditions.
type Alert struct {
	Kind   AlertKind
	Symbol string
	Detail string
	Err    error
	At     time.Time
}

// NewAlert builds an alert stamped with the current time.
func NewAlert(kind AlertKind, symbol, detail string, err error) Alert {
	return Alert{Kind: kind, Symbol: symbol, Detail: detail, Err: err, At: time.Now()}
}
