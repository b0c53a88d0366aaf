package sync

import "time"

// Policy controls retry behavior for failing sync passes.
//
// MaxAttempts bounds deliveries per op; zero means retry forever, which
// is the default. DeadLetter only has an effect with a positive
// MaxAttempts: the op at the head of the queue is evicted to the
// dead-letter table once its attempt count reaches the bound.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	DeadLetter     bool
}

// DefaultPolicy retries forever with 1s..1m exponential backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    0,
		InitialBackoff: time.Second,
		MaxBackoff:     time.Minute,
		DeadLetter:     false,
	}
}

// BackoffFor returns the delay before the next pass after the given
// number of consecutive failing passes. Zero failures means no delay.
func (p Policy) BackoffFor(failures int) time.Duration {
	if failures <= 0 {
		return 0
	}
	d := p.InitialBackoff
	if d <= 0 {
		d = time.Second
	}
	max := p.MaxBackoff
	if max <= 0 {
		max = time.Minute
	}
	for i := 1; i < failures; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// Exhausted reports whether an op with the given attempt count should
// be dead-lettered instead of retried.
func (p Policy) Exhausted(attempts int) bool {
	return p.DeadLetter && p.MaxAttempts > 0 && attempts >= p.MaxAttempts
}
