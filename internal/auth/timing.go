package auth

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingDelay equalizes the wall-clock cost of "account not found" branches
// with the cost of the real work (bcrypt compare, token issue, email
// dispatch), so response timing does not reveal whether an email exists.
type TimingDelay struct {
	base   time.Duration
	jitter time.Duration
}

// NewTimingDelay creates a delay with a fixed base plus up to jitter of
// secure random noise.
func NewTimingDelay(base, jitter time.Duration) *TimingDelay {
	return &TimingDelay{base: base, jitter: jitter}
}

// Wait sleeps for base plus random jitter.
func (td *TimingDelay) Wait() {
	time.Sleep(td.base + td.randomJitter())
}

// WaitFrom sleeps until at least base+jitter has elapsed since start. Used
// when part of the target time was already consumed by real work.
func (td *TimingDelay) WaitFrom(start time.Time) {
	target := td.base + td.randomJitter()
	if elapsed := time.Since(start); elapsed < target {
		time.Sleep(target - elapsed)
	}
}

func (td *TimingDelay) randomJitter() time.Duration {
	if td.jitter <= 0 {
		return 0
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	n := binary.BigEndian.Uint64(buf[:])
	return time.Duration(n % uint64(td.jitter))
}
