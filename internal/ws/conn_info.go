package ws

import "time"

// ConnInfo identifies one physical connection for logs and debug state.
type ConnInfo struct {
	ConnID      string
	ConnectedAt time.Time
	Attempt     int
}
