// Package dedup merges sensor samples arriving from multiple uploaded files
// into one clean series. Exports from the furnace logger routinely overlap
// (operators re-export whole weeks), so identical rows are suppressed by
// content hash before the series is sorted.
package dedup

import (
	"furnacecheck/record"
)

// MergeResult carries the merged series plus counts for ingest-health logging.
type MergeResult struct {
	Samples    []record.SensorSample
	Duplicates int
}

// Merge concatenates the given batches, drops exact duplicate samples, and
// sorts the survivors by timestamp. Per-file order is never assumed; files
// can cover interleaved or overlapping time ranges.
func Merge(batches ...[]record.SensorSample) MergeResult {
	total := 0
	for _, b := range batches {
		total += len(b)
	}

	seen := make(map[uint64]struct{}, total)
	merged := make([]record.SensorSample, 0, total)
	dups := 0
	for _, b := range batches {
		for _, s := range b {
			h := s.Hash()
			if _, ok := seen[h]; ok {
				dups++
				continue
			}
			seen[h] = struct{}{}
			merged = append(merged, s)
		}
	}

	record.SortSamples(merged)
	return MergeResult{Samples: merged, Duplicates: dups}
}
