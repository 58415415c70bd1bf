package provider

import "errors"

var (
	// ErrUpstream wraps every failure of a quote vendor call.
	ErrUpstream = errors.New("upstream quote source failed")
	// ErrNoRecords means every recovery strategy ran and none produced a usable row.
	ErrNoRecords = errors.New("no usable records")
)
