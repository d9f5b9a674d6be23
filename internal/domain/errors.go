package domain

import "errors"

var (
	ErrNoPrices    = errors.New("no asset prices fetched")
	ErrNoData      = errors.New("provider returned no data")
	ErrBadResponse = errors.New("unexpected provider response shape")
	ErrParseFailed = errors.New("probability parse failed")
	ErrCacheMiss   = errors.New("cache miss")
)
