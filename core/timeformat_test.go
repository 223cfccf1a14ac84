package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatClock12(t *testing.T) {
	t.Parallel()

	t.Run("fixed points", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "12:00 AM", FormatClock12(0, 0))
		assert.Equal(t, "12:05 PM", FormatClock12(12, 5))
		assert.Equal(t, "1:30 PM", FormatClock12(13, 30))
		assert.Equal(t, "11:59 PM", FormatClock12(23, 59))
		assert.Equal(t, "9:07 AM", FormatClock12(9, 7))
	})

	t.Run("out of range wraps around the day", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "12:00 AM", FormatClock12(24, 0))
		assert.Equal(t, "2:15 AM", FormatClock12(1, 75))
		assert.Equal(t, "11:00 PM", FormatClock12(-1, 0))
	})

	t.Run("all clocks", func(t *testing.T) {
		t.Parallel()

		for h := 0; h < 24; h++ {
			for m := 0; m < 60; m++ {
				var want string

				switch {
				case h == 0:
					want = fmt.Sprintf("12:%02d AM", m)
				case h == 12:
					want = fmt.Sprintf("12:%02d PM", m)
				case h > 12:
					want = fmt.Sprintf("%d:%02d PM", h-12, m)
				default:
					want = fmt.Sprintf("%d:%02d AM", h, m)
				}

				require.Equal(t, want, FormatClock12(h, m), "h=%d m=%d", h, m)
			}
		}
	})

	t.Run("string form", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "9:00 PM", FormatClock12String("21:00"))
		assert.Equal(t, "", FormatClock12String(""))
		assert.Equal(t, "", FormatClock12String("25:00"))
	})
}

func TestDateKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024-03-06", DateKey(time.Date(2024, 3, 6, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "0999-01-02", DateKey(time.Date(999, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", DateKey(time.Time{}))

	// The key follows the wall clock of the instant's own location.
	tokyo := time.FixedZone("JST", 9*3600)
	instant := time.Date(2024, 3, 6, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-07", DateKey(instant.In(tokyo)))
}

func TestParseInstant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "minutes", input: "2024-03-06T09:00", want: time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)},
		{name: "seconds", input: "2024-03-06T09:00:30", want: time.Date(2024, 3, 6, 9, 0, 30, 0, time.UTC)},
		{name: "rfc3339", input: "2024-03-06T09:00:00Z", want: time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)},
		{name: "iso millis", input: "2024-03-06T09:00:00.000Z", want: time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)},
		{name: "date only", input: "2024-03-06", want: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)},
		{name: "empty", input: " ", wantErr: true},
		{name: "garbage", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseInstant(tt.input, time.UTC)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestCombineDateClock(t *testing.T) {
	t.Parallel()

	got, err := CombineDateClock("2024-03-06", "09:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 6, 9, 30, 0, 0, time.UTC), got)

	_, err = CombineDateClock("2024-13-06", "09:30", time.UTC)
	require.Error(t, err)

	_, err = CombineDateClock("2024-03-06", "9h30", time.UTC)
	require.Error(t, err)
}

func TestHourSlots(t *testing.T) {
	t.Parallel()

	slots := HourSlots()
	require.Len(t, slots, 24)
	assert.Equal(t, TimeSlot{Value: "00:00", Label: "12:00 AM"}, slots[0])
	assert.Equal(t, TimeSlot{Value: "13:00", Label: "1:00 PM"}, slots[13])
}

func TestDisplayFormats(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "March 2024", FormatPeriodTitle(ViewMonth, anchor))
	assert.Equal(t, "March 2024", FormatPeriodTitle(ViewWeek, anchor))
	assert.Equal(t, "March 6, 2024", FormatPeriodTitle(ViewDay, anchor))

	assert.Equal(t, "Wednesday, March 6, 2024 • 9:00 AM - 9:30 AM", FormatEventWhen(anchor, anchor.Add(30*time.Minute)))
	assert.Equal(t, "Wednesday, March 6, 2024 • 9:00 AM", FormatEventWhen(anchor, time.Time{}))
	assert.Equal(t, "", FormatEventWhen(time.Time{}, time.Time{}))
}
