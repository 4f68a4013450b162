package elnk

import (
	"math"
	"strconv"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatBytes renders n with 1024-based units, rounded to at most decimals
// fractional digits with trailing zeros dropped: FormatBytes(1536, 1) is "1.5 KB".
func FormatBytes(n int64, decimals int) string {
	if n == 0 {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = 0
	}

	sign := ""
	value := float64(n)
	if value < 0 {
		sign = "-"
		value = -value
	}

	// Repeated division keeps exact powers of 1024 exact.
	i := 0
	for value >= 1024 && i < len(byteUnits)-1 {
		value /= 1024
		i++
	}

	rounded := roundTo(value, decimals)
	if rounded >= 1024 && i < len(byteUnits)-1 {
		i++
		rounded = roundTo(value/1024, decimals)
	}

	return sign + strconv.FormatFloat(rounded, 'f', -1, 64) + " " + byteUnits[i]
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
