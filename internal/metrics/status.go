package metrics

import "sort"

// Bucket is one labelled count, such as a status code or a failure kind.
type Bucket struct {
	Label string
	Count int
}

// FlattenBuckets converts a label->count map into rows sorted by
// descending count, then by label for stability.
func FlattenBuckets(counts map[string]int) []Bucket {
	if len(counts) == 0 {
		return nil
	}
	rows := make([]Bucket, 0, len(counts))
	for label, count := range counts {
		rows = append(rows, Bucket{Label: label, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Label < rows[j].Label
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
