package ratelimiter

// RateLimiter is the interface for rate limiting.
// Allow reports whether one more call may proceed right now.
type RateLimiter interface {
	Allow() bool
}

// Unlimited never rejects.
type Unlimited struct{}

// Allow always returns true.
func (Unlimited) Allow() bool { return true }

// New returns a token bucket, or Unlimited when rate is not positive.
func New(rate float64, capacity int) RateLimiter {
	if rate <= 0 {
		return Unlimited{}
	}
	if capacity <= 0 {
		capacity = 1
	}
	return NewTokenBucket(rate, capacity)
}
