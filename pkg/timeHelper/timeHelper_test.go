package timehelper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 9, 18, 5, 7, 0, time.UTC)
	assert.Equal(t, "09/03/2024, 18:05:07", FormatTimestamp(ts, nil))

	art := time.FixedZone("ART", -3*60*60)
	assert.Equal(t, "09/03/2024, 15:05:07", FormatTimestamp(ts, art))
}

