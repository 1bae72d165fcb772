package client

// RoleCounter models the role-count stepper on the ad-creation form:
// increments are unbounded, decrements floor at zero.
type RoleCounter struct {
	value int
}

// Increment raises the count by one.
func (c *RoleCounter) Increment() {
	c.value++
}

// Decrement lowers the count by one, never going below zero.
func (c *RoleCounter) Decrement() {
	if c.value > 0 {
		c.value--
	}
}

// Value returns the current count.
func (c *RoleCounter) Value() int {
	return c.value
}

// Reset sets the count back to zero, as the form does after a submit.
func (c *RoleCounter) Reset() {
	c.value = 0
}
