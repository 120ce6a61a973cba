package wheel

import "math"

// Geometry fixes how slice indexes relate to wheel rotation. Slices are
// ordered clockwise from the reference angle; rotations are clockwise degrees.
type Geometry struct {
	// SliceCount is the number of equal slices
	SliceCount int `json:"slice_count" yaml:"slice_count"`

	// PointerDeg is where the fixed pointer sits on the circle
	PointerDeg float64 `json:"pointer_deg" yaml:"pointer_deg"`

	// StopTweakDeg moves the stop point away from the slice centre so the
	// pointer never rests on a boundary; positive stops earlier
	StopTweakDeg float64 `json:"stop_tweak_deg" yaml:"stop_tweak_deg"`
}

// Validate checks the geometry is usable
func (g Geometry) Validate() error {
	if g.SliceCount <= 0 {
		return ErrInvalidSliceCount
	}
	if math.Abs(g.StopTweakDeg) >= g.SliceWidth()/2 {
		return ErrTweakTooLarge
	}
	return nil
}

// SliceWidth is the angular width of one slice
func (g Geometry) SliceWidth() float64 {
	return 360 / float64(g.SliceCount)
}

// AngleForSlice returns the absolute wheel orientation in [0,360) that
// puts slice index under the pointer
func (g Geometry) AngleForSlice(index int) float64 {
	width := g.SliceWidth()
	centre := float64(index)*width + width/2
	return normalize(g.PointerDeg - centre + g.StopTweakDeg)
}

// SliceForAngle returns the slice under the pointer for an absolute wheel
// rotation. It is the inverse of AngleForSlice.
func (g Geometry) SliceForAngle(rotation float64) int {
	// wheel-local angle currently under the pointer
	local := normalize(g.PointerDeg - rotation)
	index := int(math.Floor(local / g.SliceWidth()))
	if index >= g.SliceCount {
		index = g.SliceCount - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}

func normalize(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}
