package elnk

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n        int64
		decimals int
		want     string
	}{
		{0, 2, "0 Bytes"},
		{512, 2, "512 Bytes"},
		{1023, 2, "1023 Bytes"},
		{1024, 2, "1 KB"},
		{1536, 2, "1.5 KB"},
		{1536, 1, "1.5 KB"},
		{1536, 0, "2 KB"},
		{1048575, 2, "1 MB"},
		{1048576, 2, "1 MB"},
		{1073741824, 2, "1 GB"},
		{1099511627776, 2, "1 TB"},
		{1234567, 2, "1.18 MB"},
		{1234567, 3, "1.177 MB"},
		{1234567, -1, "1 MB"},
		{-2048, 2, "-2 KB"},
		{math.MaxInt64, 2, "8 EB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.n, tt.decimals), "FormatBytes(%d, %d)", tt.n, tt.decimals)
	}
}

func TestFormatBytesMonotonic(t *testing.T) {
	var inputs []int64
	for n := int64(1); n < 4096; n += 7 {
		inputs = append(inputs, n)
	}
	for k := 1; k <= 6; k++ {
		boundary := int64(1) << (10 * k)
		for _, delta := range []int64{-boundary / 100, -2, -1, 0, 1, 2, boundary / 2} {
			inputs = append(inputs, boundary+delta)
		}
	}
	inputs = append(inputs, math.MaxInt64)
	slices.Sort(inputs)
	inputs = slices.Compact(inputs)

	parse := func(t *testing.T, s string) (int, float64) {
		t.Helper()
		fields := strings.Fields(s)
		require.Len(t, fields, 2, s)
		value, err := strconv.ParseFloat(fields[0], 64)
		require.NoError(t, err, s)
		unit := slices.Index(byteUnits, fields[1])
		require.GreaterOrEqual(t, unit, 0, s)
		return unit, value
	}

	for _, decimals := range []int{0, 1, 2} {
		prevUnit, prevValue := -1, 0.0
		prevInput := int64(0)
		for _, n := range inputs {
			got := FormatBytes(n, decimals)
			unit, value := parse(t, got)

			assert.Less(t, value, 1024.0, "FormatBytes(%d, %d) = %q", n, decimals, got)
			assert.GreaterOrEqual(t, unit, prevUnit, "FormatBytes(%d, %d) = %q after %d", n, decimals, got, prevInput)
			if unit == prevUnit {
				assert.GreaterOrEqual(t, value, prevValue, "FormatBytes(%d, %d) = %q after %d", n, decimals, got, prevInput)
			}
			prevUnit, prevValue, prevInput = unit, value, n
		}
	}
}
