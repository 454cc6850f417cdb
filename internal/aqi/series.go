package aqi

// Granularity selects how chart axis labels are printed.
type Granularity string

const (
	// GranularityHourly prints hour-level precision (short ranges).
	GranularityHourly Granularity = "HOURLY"

	// GranularityDaily prints date-only labels (long ranges).
	GranularityDaily Granularity = "DAILY"
)

// LabelInterval returns the label stride for a series of n points.
// Dense hourly series over long ranges would otherwise overlap their
// axis labels.
func LabelInterval(n int) int {
	switch {
	case n <= 24:
		return 1
	case n <= 72:
		return 3
	case n <= 168:
		return 6
	case n <= 336:
		return 12
	default:
		return 24
	}
}

// SelectLabeledIndices returns the indices of a series of n points that
// receive a visible axis label, in ascending order. The final index is
// always labeled regardless of stride alignment, so the series endpoint
// is never blank. Stable: the same n always yields the same selection.
func SelectLabeledIndices(n int) []int {
	if n <= 0 {
		return nil
	}

	interval := LabelInterval(n)
	indices := make([]int, 0, n/interval+2)
	for i := 0; i < n; i += interval {
		indices = append(indices, i)
	}
	if last := n - 1; indices[len(indices)-1] != last {
		indices = append(indices, last)
	}
	return indices
}

// LabelGranularity returns the label print format for a series of n
// points. Driven purely by n, independent of the stride.
func LabelGranularity(n int) Granularity {
	if n <= 72 {
		return GranularityHourly
	}
	return GranularityDaily
}
