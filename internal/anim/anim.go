// Package anim holds the identifiers and read-only contracts shared by the
// dope sheet engine and the collaborators it observes: the compositing graph
// and the animation curves owned by it.
package anim

import (
	"fmt"
	"strings"
)

// NodeID identifies a node of the compositing graph.
type NodeID string

// ParamID identifies an animatable parameter. It is unique across the graph.
type ParamID string

// NodeKind classifies nodes by the way they relate to time.
type NodeKind int

const (
	KindGeneric NodeKind = iota
	KindReader
	KindRetime
	KindTimeOffset
	KindFrameRange
	KindGroup
)

var kindNames = map[NodeKind]string{
	KindGeneric:    "generic",
	KindReader:     "reader",
	KindRetime:     "retime",
	KindTimeOffset: "timeoffset",
	KindFrameRange: "framerange",
	KindGroup:      "group",
}

func (k NodeKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsClipLike reports whether nodes of this kind define a time-domain mapping.
func (k NodeKind) IsClipLike() bool {
	switch k {
	case KindReader, KindRetime, KindTimeOffset, KindFrameRange, KindGroup:
		return true
	}
	return false
}

// ParseNodeKind parses the lower-case kind names used in scene files.
func ParseNodeKind(s string) (NodeKind, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	if want == "" {
		return KindGeneric, nil
	}
	for k, name := range kindNames {
		if name == want {
			return k, nil
		}
	}
	return KindGeneric, fmt.Errorf("unknown node kind %q", s)
}

// Names of the scalar values read from clip-like nodes.
const (
	ValueFirstFrame   = "firstFrame"
	ValueLastFrame    = "lastFrame"
	ValueStartingTime = "startingTime"
	ValueTimeOffset   = "timeOffset"
)

// ParamInfo describes one animatable parameter of a node.
type ParamInfo struct {
	ID         ParamID
	Name       string
	Dimensions int
}

// MultiDim reports whether the parameter gets one row per dimension.
func (p ParamInfo) MultiDim() bool { return p.Dimensions > 1 }

// KeyRef addresses a single keyframe by exact time.
type KeyRef struct {
	Node  NodeID
	Param ParamID
	Dim   int
	Time  float64
}

func (r KeyRef) String() string {
	return fmt.Sprintf("%s[%d]@%g", r.Param, r.Dim, r.Time)
}

// Graph is the read-only view of the compositing graph and its curves.
//
// Keyframes must return a copy sorted by time: the curves may be mutated by
// other threads and callers are free to keep the slice.
type Graph interface {
	Kind(id NodeID) (NodeKind, bool)
	Label(id NodeID) string
	Inputs(id NodeID) []NodeID
	Outputs(id NodeID) []NodeID
	Params(id NodeID) []ParamInfo
	Keyframes(param ParamID, dim int) []Keyframe
	Value(id NodeID, name string) (float64, bool)
	// GroupOf returns the group node owning id, if any.
	GroupOf(id NodeID) (NodeID, bool)
	// Members returns the nodes directly owned by a group.
	Members(group NodeID) []NodeID
	// PanelOpen reports whether the node's settings panel is currently open.
	PanelOpen(id NodeID) bool
}

// HasKeys reports whether any dimension of param carries a keyframe.
func HasKeys(g Graph, p ParamInfo) bool {
	for d := 0; d < p.Dimensions; d++ {
		if len(g.Keyframes(p.ID, d)) > 0 {
			return true
		}
	}
	return false
}

// FindKey returns the keyframe of param/dim at exactly t, if present.
func FindKey(g Graph, param ParamID, dim int, t float64) (Keyframe, bool) {
	for _, k := range g.Keyframes(param, dim) {
		if k.Time == t {
			return k, true
		}
	}
	return Keyframe{}, false
}
