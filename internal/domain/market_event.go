package domain

import "time"

type MarketEventType string

const (
	MarketOpened MarketEventType = "market-opened"
	MarketClosed MarketEventType = "market-closed"
)

type MarketEvent struct {
	Type MarketEventType `json:"type"`
	At   time.Time       `json:"at"`
}
