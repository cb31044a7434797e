package command

import (
	"testing"

	"github.com/VoxDroid/dopesheet/internal/anim"
)

func TestInverseSwapsKeysAndValues(t *testing.T) {
	c := New(MoveKeys)
	c.Delta = 2
	c.Keys = []KeyChange{{Node: "n", Param: "n.p", Before: anim.Keyframe{Time: 10}, After: anim.Keyframe{Time: 12}}}
	inv := c.Inverse()
	if inv.ID != c.ID {
		t.Fatalf("inverse must keep the id")
	}
	if inv.Delta != -2 || inv.Keys[0].Before.Time != 12 || inv.Keys[0].After.Time != 10 {
		t.Fatalf("unexpected inverse %+v", inv)
	}
	if c.Keys[0].Before.Time != 10 {
		t.Fatalf("Inverse mutated the receiver")
	}

	trim := New(TrimLeft)
	trim.Before, trim.After = 1, 5
	if inv := trim.Inverse(); inv.Before != 5 || inv.After != 1 {
		t.Fatalf("trim inverse = %+v", inv)
	}
}

func TestInverseOfRemoveInserts(t *testing.T) {
	c := New(RemoveKeys)
	if c.Inverse().Kind != InsertKeys || c.Inverse().Inverse().Kind != RemoveKeys {
		t.Fatalf("remove/insert should invert into each other")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		c    Command
		want string
	}{
		{Command{Kind: MoveKeys, Delta: 2, Keys: make([]KeyChange, 3)}, "move 3 keys by +2"},
		{Command{Kind: RemoveKeys, Keys: make([]KeyChange, 1)}, "remove 1 key"},
		{Command{Kind: TrimRight, Node: "read1", Before: 100, After: 90}, "trim read1 right 100 -> 90"},
		{Command{Kind: MoveClip, Node: "read1", Before: 0, After: 12}, "move clip read1 0 -> 12"},
	}
	for _, tt := range tests {
		if got := tt.c.Describe(); got != tt.want {
			t.Fatalf("Describe() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for k := MoveKeys; k <= MoveGroup; k++ {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("explode"); err == nil {
		t.Fatalf("expected error")
	}
}
