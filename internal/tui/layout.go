// Package tui is the bubbletea terminal backend: one bordered pane per task,
// stacked vertically.
package tui

import "math"

// PaneChromeHeight is the number of rows a pane spends on its top and bottom border.
const PaneChromeHeight = 2

// SplitHeights divides total rows among panes in proportion to fractions.
// Rows lost to rounding go to the panes with the largest remainders, so the
// result always sums to total (for non-negative total).
func SplitHeights(total int, fractions []float64) []int {
	heights := make([]int, len(fractions))
	if total <= 0 || len(fractions) == 0 {
		return heights
	}

	weights := make([]float64, len(fractions))
	sum := 0.0
	for i, f := range fractions {
		if f > 0 {
			weights[i] = f
			sum += f
		}
	}
	if sum == 0 {
		for i := range weights {
			weights[i] = 1
		}
		sum = float64(len(weights))
	}

	remainders := make([]float64, len(weights))
	used := 0
	for i, w := range weights {
		exact := float64(total) * w / sum
		heights[i] = int(math.Floor(exact))
		remainders[i] = exact - float64(heights[i])
		used += heights[i]
	}

	for left := total - used; left > 0; left-- {
		best := 0
		for i := range remainders {
			if remainders[i] > remainders[best] {
				best = i
			}
		}
		heights[best]++
		remainders[best] = -1
	}
	return heights
}

// ContentHeight returns the visible line count for a pane of the given outer height.
func ContentHeight(outer int) int {
	if outer <= PaneChromeHeight {
		return 0
	}
	return outer - PaneChromeHeight
}
