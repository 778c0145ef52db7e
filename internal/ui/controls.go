package ui

import (
	"image"
	"math"
	"strconv"

	"cellpotts/internal/core"
)

// controlState tracks one adjustable parameter and its button layout.
type controlState struct {
	control core.ParameterControl
	value   string

	intValue   int
	floatValue float64
	hasValue   bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

func newControls(sim core.Sim) []controlState {
	provider, ok := sim.(core.ParameterControlsProvider)
	if !ok {
		return nil
	}
	list := provider.ParameterControls()
	states := make([]controlState, len(list))
	for i, ctrl := range list {
		states[i] = controlState{control: ctrl, value: "--"}
	}
	return states
}

// refresh reads the control's current value from a snapshot.
func (s *controlState) refresh(snap core.ParameterSnapshot) {
	s.hasValue = false
	s.value = "--"
	param, ok := snap.Lookup(s.control.Key)
	if !ok {
		return
	}
	switch s.control.Type {
	case core.ParamTypeInt:
		v, err := strconv.Atoi(param.Value)
		if err != nil {
			return
		}
		s.intValue = v
		s.floatValue = float64(v)
		s.value = strconv.Itoa(v)
		s.hasValue = true
	case core.ParamTypeFloat:
		v, err := strconv.ParseFloat(param.Value, 64)
		if err != nil {
			return
		}
		s.floatValue = v
		s.value = formatFloat(s.control.Step, v)
		s.hasValue = true
	}
}

func (s *controlState) intStep() int {
	step := int(math.Round(s.control.Step))
	if step <= 0 {
		step = 1
	}
	return step
}

func (s *controlState) floatStep() float64 {
	if s.control.Step <= 0 {
		return 0.05
	}
	return s.control.Step
}

// canAdjust reports whether one step in direction stays within bounds.
func (s *controlState) canAdjust(direction int) bool {
	if !s.hasValue || direction == 0 {
		return false
	}
	c := s.control
	switch c.Type {
	case core.ParamTypeInt:
		target := s.intValue + direction*s.intStep()
		if c.HasMin && direction < 0 && target < int(math.Round(c.Min)) {
			return false
		}
		if c.HasMax && direction > 0 && target > int(math.Round(c.Max)) {
			return false
		}
		return true
	case core.ParamTypeFloat:
		target := s.floatValue + float64(direction)*s.floatStep()
		if c.HasMin && direction < 0 && target < c.Min {
			return false
		}
		if c.HasMax && direction > 0 && target > c.Max {
			return false
		}
		return true
	}
	return false
}

// adjust moves the control one step in direction, clamped to its bounds, and
// applies the result through the sim's setter. It reports whether the sim
// accepted a new value.
func (s *controlState) adjust(sim core.Sim, direction int) bool {
	if !s.hasValue || direction == 0 {
		return false
	}
	c := s.control
	switch c.Type {
	case core.ParamTypeInt:
		setter, ok := sim.(core.IntParameterSetter)
		if !ok {
			return false
		}
		target := s.intValue + direction*s.intStep()
		if c.HasMin {
			target = max(target, int(math.Round(c.Min)))
		}
		if c.HasMax {
			target = min(target, int(math.Round(c.Max)))
		}
		if target == s.intValue || !setter.SetIntParameter(c.Key, target) {
			return false
		}
		s.intValue = target
		s.floatValue = float64(target)
		s.value = strconv.Itoa(target)
		return true
	case core.ParamTypeFloat:
		setter, ok := sim.(core.FloatParameterSetter)
		if !ok {
			return false
		}
		target := s.floatValue + float64(direction)*s.floatStep()
		if c.HasMin {
			target = max(target, c.Min)
		}
		if c.HasMax {
			target = min(target, c.Max)
		}
		if math.Abs(target-s.floatValue) < 1e-9 || !setter.SetFloatParameter(c.Key, target) {
			return false
		}
		s.floatValue = target
		s.value = formatFloat(c.Step, target)
		return true
	}
	return false
}

// readouts lists snapshot parameters that have no control, in order.
func readouts(snap core.ParameterSnapshot, controls []controlState) []core.Parameter {
	skip := map[string]bool{}
	for _, c := range controls {
		skip[c.control.Key] = true
	}
	var out []core.Parameter
	for _, g := range snap.Groups {
		for _, p := range g.Params {
			if !skip[p.Key] {
				out = append(out, p)
			}
		}
	}
	return out
}

func formatFloat(step, value float64) string {
	if step <= 0 {
		step = 0.05
	}
	precision := 1
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}
