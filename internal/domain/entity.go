package domain

import "time"

// Setting represents one persisted operator setting (Key-Value)
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known setting keys. Values are stored as strings and parsed by the
// controller on load.
const (
	SettingSymbol        = "symbol"
	SettingNotionalUSD   = "usd"
	SettingStopLossPct   = "st_percentage"
	SettingTakeProfitPct = "tp_percentage"
)

// TrackedEntryRecord persists the last filled entry so a manual close still
// works after a restart. At most one row exists (fixed primary key).
type TrackedEntryRecord struct {
	ID           uint   `gorm:"primaryKey"`
	OrderID      int64  `json:"order_id"`
	Symbol       string `json:"symbol"`
	Side         string `json:"side"`
	Quantity     string `json:"quantity"`
	AvgFillPrice float64
	UpdatedAt    time.Time `json:"updated_at"`
}
