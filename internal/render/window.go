package render

import (
	"fmt"
	"math"
)

// Window returns the item index range [start, end) covering rows
// firstRow-prefetch through firstRow+rows+prefetch, clamped to [0, total].
// firstRow is capped at total, which no grid row index can exceed.
func Window(firstRow, prefetch, rows, cols, total int) (int, int) {
	firstRow = min(firstRow, total)
	start := 0
	if firstRow >= prefetch {
		start = (firstRow - prefetch) * cols
	}
	end := (firstRow + rows + prefetch) * cols
	end = max(0, min(end, total))
	start = min(start, end)
	return start, end
}

// Style holds the percentage sizes of one grid item, formatted with two
// decimals for direct use in CSS.
type Style struct {
	Width       string
	Height      string
	MarginVert  string
	MarginHoriz string
}

// ItemStyle sizes items so rows x cols fill the container, leaving one
// percent of each dimension for margins.
func ItemStyle(rows, cols int) Style {
	r, c := float64(max(rows, 1)), float64(max(cols, 1))
	return Style{
		Width:       fmt.Sprintf("%.2f", 99.0/c),
		Height:      fmt.Sprintf("%.2f", 99.0/r),
		MarginVert:  fmt.Sprintf("%.2f", 1.0/(2*r)),
		MarginHoriz: fmt.Sprintf("%.2f", 1.0/(2*c)),
	}
}

// DebounceRows is the scroll-position distance, in rows, that triggers a
// refetch: half a screen, rounded up.
func DebounceRows(rows int) int {
	return int(math.Ceil(float64(rows) / 2.0))
}
