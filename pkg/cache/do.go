package cache

import "time"

// Do returns the cached value for key, computing and storing it on a miss.
// The compute error is returned as-is and nothing is cached on failure.
func Do[T any](c *Cache, key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	if cached, ok := c.Get(key); ok {
		if typed, ok := cached.(T); ok {
			return typed, nil
		}
	}

	value, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}

	c.Set(key, value, ttl)
	return value, nil
}
