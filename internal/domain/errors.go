package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidExchange = errors.New("invalid exchange")
	ErrInvalidHours    = errors.New("invalid market hours")
)
