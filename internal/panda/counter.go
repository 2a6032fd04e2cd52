// Package panda rewards chat activity in one channel: after a random number of
// messages from alternating authors the next author gets a panda.
package panda

import (
	"math/rand/v2"
	"sync"
)

// Counter tracks progress towards the next award. Consecutive messages from
// the same author count once.
type Counter struct {
	mu        sync.Mutex
	min, max  int
	intn      func(n int) int
	count     int
	lastUser  string
	threshold int
}

// NewCounter draws thresholds uniformly from [low, high]. intn defaults to
// math/rand/v2's IntN.
func NewCounter(low, high int, intn func(n int) int) *Counter {
	if intn == nil {
		intn = rand.IntN
	}
	c := &Counter{min: low, max: high, intn: intn}
	c.threshold = c.draw()
	return c
}

func (c *Counter) draw() int {
	return c.min + c.intn(c.max-c.min+1)
}

// Observe counts a message from userID and reports whether it earns the award.
// Reaching the threshold resets the count and draws a new threshold.
func (c *Counter) Observe(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if userID != c.lastUser {
		c.count++
		c.lastUser = userID
	}
	if c.count < c.threshold {
		return false
	}
	c.count = 0
	c.lastUser = ""
	c.threshold = c.draw()
	return true
}

// State returns the current count and threshold.
func (c *Counter) State() (count, threshold int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count, c.threshold
}
