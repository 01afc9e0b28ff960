package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByPriorityOrder(t *testing.T) {
	input := []Descriptor{
		{ID: "a", Category: "c", Path: "1", Priority: PriorityLow},
		{ID: "b", Category: "c", Path: "2", Priority: PriorityHigh},
		{ID: "c", Category: "c", Path: "3"},
		{ID: "d", Category: "c", Path: "4", Priority: PriorityMedium},
		{ID: "e", Category: "c", Path: "5", Priority: PriorityHigh},
	}

	groups := GroupByPriority(input)
	require.Len(t, groups, 3)

	// High before medium before low; input order kept within a bucket
	assert.Equal(t, []string{"b", "e"}, ids(groups[0]))
	assert.Equal(t, []string{"c", "d"}, ids(groups[1]))
	assert.Equal(t, []string{"a"}, ids(groups[2]))
}

func TestGroupByPrioritySkipsEmptyBuckets(t *testing.T) {
	input := []Descriptor{
		{ID: "a", Category: "c", Path: "1", Priority: PriorityLow},
		{ID: "b", Category: "c", Path: "2", Priority: PriorityLow},
	}

	groups := GroupByPriority(input)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"a", "b"}, ids(groups[0]))
}

func TestGroupByPriorityEmptyInput(t *testing.T) {
	assert.Empty(t, GroupByPriority(nil))
}

func ids(ds []Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.ID
	}
	return out
}
