package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{-5, "0s"},
		{0, "0s"},
		{45, "45s"},
		{59, "59s"},
		{60, "1m"},
		{125, "2m5s"},
		{3599, "59m59s"},
		{3600, "1h"},
		{3661, "1h1m"},
		{7200 + 59, "2h"},
		{36000 + 1800, "10h30m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSeconds(tt.secs), "FormatSeconds(%d)", tt.secs)
	}
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "0.0", FormatHours(0))
	assert.Equal(t, "1.5", FormatHours(5400))
	assert.Equal(t, "0.1", FormatHours(360))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Work ")
	assert.NoError(t, err)
	assert.Equal(t, Work, k)

	k, err = ParseKind("study")
	assert.NoError(t, err)
	assert.Equal(t, Study, k)

	_, err = ParseKind("sleep")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "Work", Work.Label())
	assert.Equal(t, "Study", Study.Label())
}
