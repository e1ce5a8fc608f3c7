package datefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"yyyy-MM-dd", "2006-01-02"},
		{"dd/MM/yy HH:mm:ss", "02/01/06 15:04:05"},
		{"yyyy-MM-dd'T'HH:mm:ss.SSSXXX", "2006-01-02T15:04:05.000Z07:00"},
		{"EEE, d MMM yyyy", "Mon, 2 Jan 2006"},
		{"hh:mm a", "03:04 PM"},
		{"'at' h 'o''clock'", "at 3 o'clock"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := Layout(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLayout_Unsupported(t *testing.T) {
	_, err := Layout("yyyy-ww")
	var upe *UnsupportedPatternError
	require.ErrorAs(t, err, &upe)
	assert.Equal(t, "ww", upe.Token)
}

func TestFormat(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)
	got, err := Format(ts, "yyyy-MM-dd HH:mm")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05 14:07", got)
}

func TestValid(t *testing.T) {
	tests := []struct {
		value   string
		pattern string
		want    bool
	}{
		{"2024-02-29", "yyyy-MM-dd", true},
		{"2023-02-29", "yyyy-MM-dd", false},
		{"2024-13-01", "yyyy-MM-dd", false},
		{"2024-01-01 extra", "yyyy-MM-dd", false},
		{"05/03/2024", "dd/MM/yyyy", true},
		{"not a date", "yyyy-MM-dd", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := Valid(tt.value, tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
