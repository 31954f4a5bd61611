package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "37 45.600N", "37 45.600N"},
		{"degree punctuation", `37°45.600'N`, "37 45.600 N"},
		{"lowercase with commas", "37 45.600n, 075 30.200w", "37 45.600N 075 30.200W"},
		{"tabs and runs of spaces", "37\t 45.600N   ", "37 45.600N"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Clean(got), "Clean must be idempotent")
		})
	}
}

func TestConvertToDecimal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		hint string
		want float64
	}{
		{"decimal minutes north", "37 45.600N", "", 37.76},
		{"decimal minutes west", "075 30.200W", "", -75.50333333333333},
		{"dms north", "47 06 36.0N", "", 47.11},
		{"dms west", "122 19 48W", "", -122.33},
		{"decimal degrees cardinal", "34.0522N", "", 34.0522},
		{"decimal degrees south", "34.0522S", "", -34.0522},
		{"signed decimal degrees", "-118.2437", "", -118.2437},
		{"hint decides hemisphere", "37 45.600", "S", -37.76},
		{"cardinal wins over hint", "37 45.600N", "S", 37.76},
		{"hyphen separators", "37-45.6N", "", 37.76},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertToDecimal(tt.raw, tt.hint)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestConvertToDecimalRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"words", "NO POSITION"},
		{"minutes out of range", "37 75.600N"},
		{"seconds out of range", "47 06 88.0N"},
		{"trailing junk", "37 45.600N EXTRA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertToDecimal(tt.raw, "")
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
		})
	}
}

func TestKmToMiles(t *testing.T) {
	assert.InDelta(t, 0.621371, KmToMiles(1), 1e-9)
	assert.InDelta(t, 62.1371, KmToMiles(100), 1e-6)
	assert.Zero(t, KmToMiles(0))
}
