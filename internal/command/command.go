// Package command defines the reversible edit descriptors emitted by the dope
// sheet editor and the dispatcher contract through which they leave it. The
// editor builds commands but never applies them.
package command

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/VoxDroid/dopesheet/internal/anim"
)

// Kind is the kind of edit a command describes.
type Kind int

const (
	MoveKeys Kind = iota
	RemoveKeys
	InsertKeys
	SetInterpolation
	TrimLeft
	TrimRight
	MoveClip
	MoveGroup
)

var kindNames = []string{"move_keys", "remove_keys", "insert_keys", "set_interpolation", "trim_left", "trim_right", "move_clip", "move_group"}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes k by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind parses the names produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return MoveKeys, fmt.Errorf("unknown command kind %q", s)
}

// KeyChange is the before and after state of one keyframe. Before is the key
// as it was snapshotted; After is what it becomes.
type KeyChange struct {
	Node   anim.NodeID   `json:"node"`
	Param  anim.ParamID  `json:"param"`
	Dim    int           `json:"dim"`
	Before anim.Keyframe `json:"before"`
	After  anim.Keyframe `json:"after"`
}

// Command is an opaque, reversible edit descriptor.
type Command struct {
	ID   string      `json:"id"`
	Kind Kind        `json:"kind"`
	Node anim.NodeID `json:"node,omitempty"`
	// Keys is set for keyframe edits.
	Keys []KeyChange `json:"keys,omitempty"`
	// Field, Before and After are set for named value edits.
	Field  string  `json:"field,omitempty"`
	Before float64 `json:"before,omitempty"`
	After  float64 `json:"after,omitempty"`
	// Anchor is the untouched opposite edge of a trim.
	Anchor float64 `json:"anchor,omitempty"`
	// Delta is the time displacement of a move.
	Delta float64 `json:"delta,omitempty"`
}

// Dispatcher receives commands built by the editor. It owns their execution
// and storage.
type Dispatcher interface {
	Push(c Command)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(Command)

// Push calls f(c).
func (f DispatcherFunc) Push(c Command) { f(c) }

// New returns a command of kind k with a fresh id.
func New(k Kind) Command {
	return Command{ID: uuid.NewString(), Kind: k}
}

// Inverse returns the command undoing c. The id is kept.
func (c Command) Inverse() Command {
	inv := c
	inv.Keys = make([]KeyChange, len(c.Keys))
	for i, kc := range c.Keys {
		kc.Before, kc.After = kc.After, kc.Before
		inv.Keys[i] = kc
	}
	inv.Before, inv.After = c.After, c.Before
	inv.Delta = -c.Delta
	switch c.Kind {
	case RemoveKeys:
		inv.Kind = InsertKeys
	case InsertKeys:
		inv.Kind = RemoveKeys
	}
	return inv
}

// Describe returns a short human readable summary.
func (c Command) Describe() string {
	switch c.Kind {
	case MoveKeys:
		return fmt.Sprintf("move %s by %+g", plural(len(c.Keys), "key"), c.Delta)
	case MoveGroup:
		return fmt.Sprintf("move group %s by %+g", c.Node, c.Delta)
	case RemoveKeys:
		return fmt.Sprintf("remove %s", plural(len(c.Keys), "key"))
	case InsertKeys:
		return fmt.Sprintf("insert %s", plural(len(c.Keys), "key"))
	case SetInterpolation:
		interp := "?"
		if len(c.Keys) > 0 {
			interp = c.Keys[0].After.Interp.String()
		}
		return fmt.Sprintf("set %s to %s", plural(len(c.Keys), "key"), interp)
	case TrimLeft, TrimRight:
		side := "left"
		if c.Kind == TrimRight {
			side = "right"
		}
		return fmt.Sprintf("trim %s %s %g -> %g", c.Node, side, c.Before, c.After)
	case MoveClip:
		return fmt.Sprintf("move clip %s %g -> %g", c.Node, c.Before, c.After)
	}
	return strings.ReplaceAll(c.Kind.String(), "_", " ")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
