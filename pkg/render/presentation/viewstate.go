package presentation

import "math"

// Zoom bounds and defaults.
const (
	MinScale     = 0.5
	MaxScale     = 2.0
	DefaultScale = 1.0
	ZoomStep     = 0.1
)

// ViewState is the zoom scale of one display session. The zero value is
// ready to use and reports DefaultScale.
type ViewState struct {
	scale float64
	set   bool
}

// Scale returns the current scale in [MinScale, MaxScale].
func (v *ViewState) Scale() float64 {
	if !v.set {
		return DefaultScale
	}
	return v.scale
}

// Zoom adds delta to the scale and clamps the result. The sum is rounded to
// two decimals so repeated steps land on exact values.
func (v *ViewState) Zoom(delta float64) float64 {
	s := math.Round((v.Scale()+delta)*100) / 100
	v.scale = min(max(s, MinScale), MaxScale)
	v.set = true
	return v.scale
}

// Reset returns the scale to DefaultScale.
func (v *ViewState) Reset() {
	v.scale = DefaultScale
	v.set = true
}
