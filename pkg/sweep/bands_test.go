package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBands_WellFormed(t *testing.T) {
	require.Len(t, Bands, 19)
	for _, b := range Bands {
		assert.Less(t, b.Start, b.End, b.Name)
	}
}

func TestBandByName(t *testing.T) {
	b, err := BandByName("20M")
	require.NoError(t, err)
	assert.Equal(t, uint32(14_000_000), b.Start)
	assert.Equal(t, uint32(14_350_000), b.End)

	_, err = BandByName("11m")
	assert.Error(t, err)
}

func TestFormatFrequency(t *testing.T) {
	tests := []struct {
		fq   uint32
		want string
	}{
		{fq: 0, want: "0.000.000.000 Hz"},
		{fq: 14_074_000, want: "0.014.074.000 Hz"},
		{fq: 1_000_000_001, want: "1.000.000.001 Hz"},
		{fq: 135_700, want: "0.000.135.700 Hz"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFrequency(tt.fq))
		})
	}
}
