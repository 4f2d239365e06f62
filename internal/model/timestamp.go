package model

import "time"

// Timestamp is milliseconds since the Unix epoch. Ordering is total.
type Timestamp int64

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp(time.Now().UnixMilli())
}

// Time converts the Timestamp to a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t)).UTC()
}
