package wheel

// Table binds a fixed list of slices to a prize catalog
type Table struct {
	Prizes []Prize
	Slices []Slice
}

// Validate checks the catalog and slice list. Slices that reference a
// prize missing from the catalog are allowed; see PrizeForSlice.
func (t *Table) Validate() error {
	if t == nil {
		return ErrNilTable
	}
	if len(t.Prizes) == 0 {
		return ErrEmptyCatalog
	}
	if len(t.Slices) == 0 {
		return ErrEmptySliceTable
	}
	for _, p := range t.Prizes {
		if p.Weight < 0 {
			return ErrNegativeWeight
		}
	}
	return nil
}

// Prize looks up a catalog entry by id
func (t *Table) Prize(id int) (Prize, bool) {
	for _, p := range t.Prizes {
		if p.ID == id {
			return p, true
		}
	}
	return Prize{}, false
}

// PrizeForSlice maps a slice index to its prize. An unknown prize id (or an
// index outside the table) resolves to the last catalog entry.
func (t *Table) PrizeForSlice(index int) Prize {
	if index >= 0 && index < len(t.Slices) {
		if p, ok := t.Prize(t.Slices[index].PrizeID); ok {
			return p
		}
	}
	return t.Prizes[len(t.Prizes)-1]
}

// SlicesForPrize returns every slice index bound to the prize id, in order
func (t *Table) SlicesForPrize(id int) []int {
	var indexes []int
	for i, s := range t.Slices {
		if s.PrizeID == id {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// UnknownPrizeIDs lists slice prize ids that have no catalog entry
func (t *Table) UnknownPrizeIDs() []int {
	seen := make(map[int]bool)
	var unknown []int
	for _, s := range t.Slices {
		if _, ok := t.Prize(s.PrizeID); ok || seen[s.PrizeID] {
			continue
		}
		seen[s.PrizeID] = true
		unknown = append(unknown, s.PrizeID)
	}
	return unknown
}
