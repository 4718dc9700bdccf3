package aggregate

import "github.com/liyue/tracemap/internal/domain"

// MergePeriods run-length encodes a sorted, de-duplicated timestamp sequence
// into closed integer intervals. A gap of exactly one unit continues the
// current period; any larger gap starts a new one. This is a compression over
// consecutive integers, not over real time.
//
// The input must already be sorted ascending and free of duplicates; the
// function does not sort. That is a precondition, not behaviour.
func MergePeriods(timestamps []int64) []domain.TimePeriod {
	if len(timestamps) == 0 {
		return nil
	}

	periods := make([]domain.TimePeriod, 0, 1)
	start := timestamps[0]
	end := timestamps[0]

	for _, ts := range timestamps[1:] {
		if ts == end+1 {
			end = ts
			continue
		}
		periods = append(periods, domain.TimePeriod{Start: start, End: end})
		start = ts
		end = ts
	}

	return append(periods, domain.TimePeriod{Start: start, End: end})
}
