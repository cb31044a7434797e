package hierarchy

import "github.com/VoxDroid/dopesheet/internal/anim"

// policy is the per-kind placement and visibility behaviour of a node row.
type policy struct {
	// nestsInputs nodes adopt the rows of the nodes feeding them.
	nestsInputs bool
	// alwaysVisible rows are shown regardless of animation.
	alwaysVisible bool
	// needsAnimation rows are shown only while a parameter row is visible.
	needsAnimation bool
	// group rows are shown while the settings panel is open and a member
	// row is visible.
	group bool
}

var policies = map[anim.NodeKind]policy{
	anim.KindGeneric:    {needsAnimation: true},
	anim.KindReader:     {alwaysVisible: true},
	anim.KindRetime:     {nestsInputs: true, alwaysVisible: true},
	anim.KindTimeOffset: {nestsInputs: true, alwaysVisible: true},
	anim.KindFrameRange: {nestsInputs: true, alwaysVisible: true},
	anim.KindGroup:      {group: true},
}

func policyOf(k anim.NodeKind) policy {
	if p, ok := policies[k]; ok {
		return p
	}
	return policies[anim.KindGeneric]
}
