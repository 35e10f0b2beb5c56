package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{in: "19:00", want: Clock(19, 0)},
		{in: "09:30", want: Clock(9, 30)},
		{in: "9:05", want: Clock(9, 5)},
		{in: " 00:00 ", want: 0},
		{in: "23:59", want: Clock(23, 59)},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12:5", wantErr: true},
		{in: "7pm", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockTimeString(t *testing.T) {
	assert.Equal(t, "19:00", Clock(19, 0).String())
	assert.Equal(t, "08:05", Clock(8, 5).String())
	assert.True(t, Clock(11, 0).OnTheHour())
	assert.False(t, Clock(11, 30).OnTheHour())
	assert.False(t, ClockTime(24*60).Valid())
}

func TestNormalizeDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2025, 3, 14, 23, 45, 0, 0, ist)

	got := NormalizeDate(in)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), got)

	parsed, err := ParseDate("2025-03-14")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(got))
	assert.Equal(t, "2025-03-14", FormatDate(parsed))

	_, err = ParseDate("14/03/2025")
	assert.Error(t, err)
}
