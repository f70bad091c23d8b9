package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.March, 15), d)

	_, err = ParseDate("15/03/2024")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDateDaysUntil(t *testing.T) {
	d := NewDate(2024, time.March, 1)
	assert.Equal(t, 0, d.DaysUntil(d))
	assert.Equal(t, 3, d.DaysUntil(d.AddDays(3)))
	assert.Equal(t, -2, d.DaysUntil(d.AddDays(-2)))

	// Across a month boundary.
	assert.Equal(t, 31, d.DaysUntil(NewDate(2024, time.April, 1)))
}

func TestDateJSONZeroValueIsNull(t *testing.T) {
	data, err := json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var d Date
	require.NoError(t, json.Unmarshal([]byte("null"), &d))
	assert.True(t, d.IsZero())
}

func TestDateJSONRoundTrip(t *testing.T) {
	want := NewDate(2024, time.March, 15)
	data, err := json.Marshal(want)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-15"`, string(data))

	var got Date
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, want.Equal(got))
}
