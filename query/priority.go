package query

// GroupByPriority buckets descriptors into high, medium, and low groups
// and returns the non-empty groups in that fixed order. Descriptors with
// an unset priority land in the medium bucket; order within a bucket
// follows the input.
//
// Batch does not consume this grouping: chunking walks the caller's input
// order. Callers that want priority-ordered execution flatten the groups
// themselves before submitting.
func GroupByPriority(descriptors []Descriptor) [][]Descriptor {
	buckets := map[Priority][]Descriptor{}
	for _, d := range descriptors {
		p := d.Priority
		if p == "" {
			p = PriorityMedium
		}
		buckets[p] = append(buckets[p], d)
	}

	var groups [][]Descriptor
	for _, p := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		if len(buckets[p]) > 0 {
			groups = append(groups, buckets[p])
		}
	}
	return groups
}
