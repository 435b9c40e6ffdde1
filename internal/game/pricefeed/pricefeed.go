package pricefeed

import (
	"errors"
	"sync"
)

// ErrNoPrice is returned when a feed has no price to report.
var ErrNoPrice = errors.New("price feed has no price")

// Feed reports the base-token exchange rate in fiat cents per whole token.
// The game reads exactly one rate from it; anything beyond that is out of
// scope here.
type Feed interface {
	LatestPrice() (centsPerToken int64, err error)
}

// Static is a fixed-rate feed, settable at runtime. Used in tests and as the
// default feed when no external oracle is wired.
type Static struct {
	mu    sync.RWMutex
	price int64
}

// NewStatic returns a static feed reporting the given rate.
func NewStatic(centsPerToken int64) *Static {
	return &Static{price: centsPerToken}
}

// LatestPrice implements Feed.
func (s *Static) LatestPrice() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.price <= 0 {
		return 0, ErrNoPrice
	}
	return s.price, nil
}

// SetPrice updates the reported rate.
func (s *Static) SetPrice(centsPerToken int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.price = centsPerToken
}
