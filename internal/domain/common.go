package domain

// PositionStatus represents the lifecycle state of a simulated position.
type PositionStatus string

const (
	StatusOpen   PositionStatus = "open"
	StatusClosed PositionStatus = "closed"
)

// ExitReason indicates which exit rule closed a position.
type ExitReason string

const (
	ExitReasonStopLoss   ExitReason = "stop_loss"
	ExitReasonTakeProfit ExitReason = "take_profit"
	ExitReasonTimeStop   ExitReason = "time_stop"
	ExitReasonEODClose   ExitReason = "eod_close"
)
