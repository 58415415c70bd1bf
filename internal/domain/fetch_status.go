package domain

type FetchStatus string

const (
	FetchStatusOK     FetchStatus = "ok"
	FetchStatusFailed FetchStatus = "failed"
)
