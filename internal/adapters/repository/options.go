package repository

import "time"

// defaultConnectTimeout bounds the initial connect, ping, and index
// setup when no override is given.
const defaultConnectTimeout = 10 * time.Second

// MongoOption configures a MongoStore.
type MongoOption func(*MongoStore)

// WithConnectTimeout overrides the startup timeout. Non-positive
// values are ignored.
func WithConnectTimeout(d time.Duration) MongoOption {
	return func(s *MongoStore) {
		if d > 0 {
			s.connectTimeout = d
		}
	}
}
