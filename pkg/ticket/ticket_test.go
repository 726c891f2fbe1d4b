package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestID(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "TICKET-1704067200000", ID(ts))
}

func TestIDIgnoresTimeZone(t *testing.T) {
	utc := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	local := utc.In(time.FixedZone("ART", -3*60*60))
	assert.Equal(t, ID(utc), ID(local))
}
