package dto

const (
	ActionKindOpen  = "OPEN"
	ActionKindClose = "CLOSE"

	ReasonSignal     = "SIGNAL"
	ReasonStopLoss   = "STOP_LOSS"
	ReasonTakeProfit = "TAKE_PROFIT"
	ReasonMaxHold    = "MAX_HOLD"
)

// TradeAction is one planned trade decision. Kind selects which payload
// fields are meaningful: Size for OPEN, Return for CLOSE.
type TradeAction struct {
	Kind       string  `json:"kind"`
	AssetCode  string  `json:"asset_code"`
	Price      float64 `json:"price"`
	Size       float64 `json:"size,omitempty"`   // OPEN: fraction of capital
	Return     float64 `json:"return,omitempty"` // CLOSE: realized return
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence,omitempty"` // OPEN: selector confidence
}

// IsOpen reports whether the action opens a position.
func (a TradeAction) IsOpen() bool {
	return a.Kind == ActionKindOpen
}

// IsClose reports whether the action closes a position.
func (a TradeAction) IsClose() bool {
	return a.Kind == ActionKindClose
}
