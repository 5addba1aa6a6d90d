package model

// MergeResult reports the outcome of merging an incoming record set
// into an existing one.
type MergeResult struct {
	Merged  []Record
	Skipped int // incoming records dropped because their identifier was already present
}

// Merge combines an existing record set with an incoming one. Identity
// is the record ID: an incoming record whose ID is already present in
// the existing set, or in an earlier incoming record accepted during
// the same call, is counted as a skipped duplicate and dropped.
//
// The merged set is existing followed by the accepted incoming records,
// relative order preserved on both sides. Merging the same incoming set
// twice yields the same result as merging it once.
func Merge(existing, incoming []Record) MergeResult {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.ID] = struct{}{}
	}

	merged := make([]Record, len(existing), len(existing)+len(incoming))
	copy(merged, existing)

	skipped := 0
	for _, r := range incoming {
		if _, dup := seen[r.ID]; dup {
			skipped++
			continue
		}
		seen[r.ID] = struct{}{}
		merged = append(merged, r)
	}

	return MergeResult{Merged: merged, Skipped: skipped}
}
