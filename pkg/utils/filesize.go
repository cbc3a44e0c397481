package utils

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatFileSize renders a byte count in powers of 1000 with up to decimals
// fractional digits, e.g. 12345 -> "12.35 KB". Trailing zeros are dropped.
func FormatFileSize(bytes int64, decimals int) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	if decimals <= 0 {
		decimals = 2
	}
	value := float64(bytes)
	index := 0
	for value >= 1000 && index < len(sizeUnits)-1 {
		value /= 1000
		index++
	}
	return strconv.FormatFloat(roundTo(value, decimals), 'f', -1, 64) + " " + sizeUnits[index]
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
