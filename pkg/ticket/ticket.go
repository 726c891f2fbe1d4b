package ticket

import (
	"fmt"
	"time"
)

// ID returns the display label of a bet created at t. Two bets created in
// the same millisecond share a label.
func ID(t time.Time) string {
	return fmt.Sprintf("TICKET-%d", t.UnixMilli())
}
