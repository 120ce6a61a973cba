package wheel

import (
	"strings"

	"github.com/KirkDiggler/spinwin/internal/common/random"
)

// Policy decides which slice a spin should land on
type Policy interface {
	// Name identifies the policy in config and API responses
	Name() string

	// Pick returns a slice index in [0, len(table.Slices))
	Pick(table *Table, rnd random.Source) int
}

const (
	PolicyFixed    = "fixed"
	PolicyWeighted = "weighted"
	PolicyUniform  = "uniform"
)

// FixedSlice always lands on the same slice
type FixedSlice struct {
	Index int
}

func (p FixedSlice) Name() string { return PolicyFixed }

func (p FixedSlice) Pick(_ *Table, _ random.Source) int {
	return p.Index
}

// Validate checks the index against the slice table
func (p FixedSlice) Validate(table *Table) error {
	if p.Index < 0 || p.Index >= len(table.Slices) {
		return ErrFixedSliceOutOfRange
	}
	return nil
}

// WeightedPrize draws a prize by its catalog weight, then one of that
// prize's slices uniformly. Prizes without a slice can never be drawn.
type WeightedPrize struct{}

func (p WeightedPrize) Name() string { return PolicyWeighted }

func (p WeightedPrize) Pick(table *Table, rnd random.Source) int {
	type candidate struct {
		weight float64
		slices []int
	}

	var candidates []candidate
	var total float64
	for _, prize := range table.Prizes {
		slices := table.SlicesForPrize(prize.ID)
		if len(slices) == 0 || prize.Weight <= 0 {
			continue
		}
		candidates = append(candidates, candidate{weight: prize.Weight, slices: slices})
		total += prize.Weight
	}

	// nothing weighted, every slice is equally likely
	if total == 0 {
		return rnd.Intn(len(table.Slices))
	}

	u := rnd.Float64()
	chosen := candidates[len(candidates)-1]
	var cumulative float64
	for _, c := range candidates {
		cumulative += c.weight / total
		if u < cumulative {
			chosen = c
			break
		}
	}

	return chosen.slices[rnd.Intn(len(chosen.slices))]
}

// UniformSlice picks any slice with equal probability
type UniformSlice struct{}

func (p UniformSlice) Name() string { return PolicyUniform }

func (p UniformSlice) Pick(table *Table, rnd random.Source) int {
	return rnd.Intn(len(table.Slices))
}

// PolicyByName builds a policy from its config name. fixedIndex is only
// used by the fixed policy.
func PolicyByName(name string, fixedIndex int) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyFixed, "":
		return FixedSlice{Index: fixedIndex}, nil
	case PolicyWeighted:
		return WeightedPrize{}, nil
	case PolicyUniform:
		return UniformSlice{}, nil
	default:
		return nil, ErrUnknownPolicy
	}
}
