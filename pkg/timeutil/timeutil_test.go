package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2024-02-29", FormatDateStr(d))

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}

func TestYearRange(t *testing.T) {
	from, to := YearRange(2024)
	assert.Equal(t, 2024, from.Year())
	assert.Equal(t, 2025, to.Year())
	assert.Equal(t, time.January, to.Month())
	assert.Equal(t, 1, to.Day())
}
