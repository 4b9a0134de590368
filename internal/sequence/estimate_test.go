package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimateDuration(t *testing.T) {
	timing := NewTiming(100, 50, 800)

	tests := []struct {
		name string
		seq  Sequence
		want time.Duration
	}{
		{
			name: "single string",
			seq:  Sequence{Strings: []string{"ab"}},
			want: 1100 * time.Millisecond,
		},
		{
			name: "keep last drops pause and deletion of the last string",
			seq:  Sequence{Strings: []string{"ab", "cde"}, Policy: Policy{KeepLastString: true}},
			want: (200 + 800 + 100 + 300) * time.Millisecond,
		},
		{
			name: "runes not bytes",
			seq:  Sequence{Strings: []string{"привет"}},
			want: (600 + 800 + 300) * time.Millisecond,
		},
		{
			name: "empty",
			seq:  Sequence{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateDuration(tt.seq, timing))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(999*time.Millisecond))
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "1m 5s", FormatDuration(65*time.Second))
}

func TestPrefix(t *testing.T) {
	seq := Sequence{Strings: []string{"héllo"}}
	assert.Equal(t, "", seq.Prefix(0, 0))
	assert.Equal(t, "hé", seq.Prefix(0, 2))
	assert.Equal(t, "héllo", seq.Prefix(0, 5))
	assert.Equal(t, 5, seq.RuneLen(0))
}
