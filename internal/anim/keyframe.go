package anim

import (
	"fmt"
	"sort"
	"strings"
)

// Interpolation is the interpolation kind of a keyframe.
type Interpolation int

const (
	InterpConstant Interpolation = iota
	InterpLinear
	InterpSmooth
	InterpCatmullRom
	InterpCubic
	InterpHorizontal
	InterpBreak
)

var interpNames = []string{"constant", "linear", "smooth", "catmullrom", "cubic", "horizontal", "break"}

func (i Interpolation) String() string {
	if int(i) >= 0 && int(i) < len(interpNames) {
		return interpNames[i]
	}
	return fmt.Sprintf("interp(%d)", int(i))
}

// ParseInterpolation parses a lower-case interpolation name. Empty means smooth.
func ParseInterpolation(s string) (Interpolation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return InterpSmooth, nil
	}
	for i, n := range interpNames {
		if n == s {
			return Interpolation(i), nil
		}
	}
	return InterpSmooth, fmt.Errorf("unknown interpolation %q", s)
}

// Keyframe is a control point of an animation curve.
type Keyframe struct {
	Time   float64
	Value  float64
	Interp Interpolation
}

// SortKeyframes orders keys by time in place.
func SortKeyframes(keys []Keyframe) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
}

// Extent returns the first and last key time of a sorted snapshot.
func Extent(keys []Keyframe) (first, last float64, ok bool) {
	if len(keys) == 0 {
		return 0, 0, false
	}
	return keys[0].Time, keys[len(keys)-1].Time, true
}
