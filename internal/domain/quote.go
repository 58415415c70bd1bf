package domain

import (
	"slices"
	"time"
)

// Quote is the latest known trading snapshot of one instrument on one exchange.
type Quote struct {
	Symbol        string
	Exchange      Exchange
	ShortName     string
	Currency      string
	Price         float64
	Change        float64
	ChangePercent float64
	High          float64
	Low           float64
	Open          float64
	PrevClose     float64
	Volume        int64
	LastUpdated   time.Time
	ChartData     []ChartPoint
}

type ChartPoint struct {
	Time  time.Time
	Price float64
}

// Clone returns a copy that shares no memory with q.
func (q Quote) Clone() Quote {
	q.ChartData = slices.Clone(q.ChartData)
	return q
}
