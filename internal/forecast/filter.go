package forecast

// DefaultFilterWeight is the weight of a new reading in the low-pass filter
// (0.8 previous / 0.2 new).
const DefaultFilterWeight float32 = 0.2

// LowPass is a first-order exponential filter seeded by its first input.
type LowPass struct {
	weight float32
	value  float32
	seeded bool
}

// NewLowPass creates a filter giving weight to each new input.
func NewLowPass(weight float32) *LowPass {
	return &LowPass{weight: weight}
}

// Apply folds raw into the filter and returns the filtered value.
func (f *LowPass) Apply(raw float32) float32 {
	if !f.seeded {
		f.value = raw
		f.seeded = true
		return f.value
	}
	f.value = f.value*(1-f.weight) + raw*f.weight
	return f.value
}

// Value returns the last filtered value and whether the filter has been seeded.
func (f *LowPass) Value() (float32, bool) {
	return f.value, f.seeded
}
