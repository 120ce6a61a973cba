package wheel

import (
	"testing"

	"github.com/KirkDiggler/spinwin/internal/common/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedPrize_Distribution(t *testing.T) {
	table := &Table{
		Prizes: []Prize{
			{ID: 1, Name: "1000 AED GIFT CARD"},
			{ID: 2, Name: "750 AED GIFT CARD"},
			{ID: 3, Name: "500 AED GIFT CARD", Weight: 0.3},
			{ID: 4, Name: "250 AED GIFT CARD", Weight: 0.7},
		},
		Slices: DefaultSlices(),
	}
	rnd := random.New(&random.Config{Seed: 42})
	policy := WeightedPrize{}

	const draws = 10000
	counts := make(map[int]int)
	for i := 0; i < draws; i++ {
		index := policy.Pick(table, rnd)
		require.GreaterOrEqual(t, index, 0)
		require.Less(t, index, len(table.Slices))
		counts[table.PrizeForSlice(index).ID]++
	}

	assert.Zero(t, counts[1])
	assert.Zero(t, counts[2])
	assert.InDelta(t, 0.3, float64(counts[3])/draws, 0.03)
	assert.InDelta(t, 0.7, float64(counts[4])/draws, 0.03)
}

func TestWeightedPrize_SkipsPrizesWithoutSlices(t *testing.T) {
	table := &Table{
		Prizes: []Prize{
			{ID: 1, Name: "ORPHAN", Weight: 100},
			{ID: 2, Name: "BOUND", Weight: 1},
		},
		Slices: []Slice{{PrizeID: 2}, {PrizeID: 2}},
	}
	rnd := random.New(&random.Config{Seed: 7})

	for i := 0; i < 100; i++ {
		assert.Equal(t, 2, table.PrizeForSlice(WeightedPrize{}.Pick(table, rnd)).ID)
	}
}

func TestWeightedPrize_ZeroWeightsFallBackToUniform(t *testing.T) {
	table := &Table{
		Prizes: []Prize{{ID: 1}, {ID: 2}},
		Slices: []Slice{{PrizeID: 1}, {PrizeID: 2}, {PrizeID: 2}},
	}
	rnd := random.New(&random.Config{Seed: 3})

	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		seen[WeightedPrize{}.Pick(table, rnd)] = true
	}
	assert.Len(t, seen, 3)
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("fixed", 5)
	require.NoError(t, err)
	assert.Equal(t, FixedSlice{Index: 5}, p)

	p, err = PolicyByName(" Weighted ", 0)
	require.NoError(t, err)
	assert.Equal(t, PolicyWeighted, p.Name())

	p, err = PolicyByName("uniform", 0)
	require.NoError(t, err)
	assert.Equal(t, PolicyUniform, p.Name())

	_, err = PolicyByName("rigged", 0)
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestTable_PrizeForSliceFallback(t *testing.T) {
	table := &Table{
		Prizes: DefaultPrizes(),
		Slices: []Slice{{PrizeID: 99}, {PrizeID: 1}},
	}

	assert.Equal(t, 4, table.PrizeForSlice(0).ID)
	assert.Equal(t, 1, table.PrizeForSlice(1).ID)
	assert.Equal(t, 4, table.PrizeForSlice(12).ID)
	assert.Equal(t, []int{99}, table.UnknownPrizeIDs())
}
