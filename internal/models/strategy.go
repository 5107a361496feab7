package models

type Side string

const (
	SideNone Side = ""
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderIntent: то, что ядро отдаёт исполнителю. Для SELL заполнен Reason,
// для BUY: StopLoss/TakeProfit.
type OrderIntent struct {
	Symbol        string
	Side          Side
	Quantity      float64
	StopLoss      float64
	TakeProfit    float64
	Reason        ExitReason
	ClientOrderID string
}

// OrderAck: ответ биржи на размещение.
type OrderAck struct {
	VenueOrderID string
}

// OrderResult возвращается из воркера исполнения обратно в цикл тиков.
type OrderResult struct {
	Intent       OrderIntent
	VenueOrderID string
	Err          error
}

// Success true, если ордер принят.
func (r OrderResult) Success() bool { return r.Err == nil && r.VenueOrderID != "" }
