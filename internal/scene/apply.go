package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/VoxDroid/dopesheet/internal/anim"
	"github.com/VoxDroid/dopesheet/internal/command"
)

// Apply executes c against the scene, or its inverse when reverse is set.
// Key changes whose source key no longer exists are skipped; the rest of the
// command still applies. Value commands on a removed node are skipped too.
func (s *Scene) Apply(c command.Command, reverse bool) error {
	if reverse {
		c = c.Inverse()
	}
	switch c.Kind {
	case command.MoveKeys, command.MoveGroup, command.SetInterpolation:
		return s.replaceKeys(c)
	case command.RemoveKeys:
		return s.editKeys(c, func(p *param, kc command.KeyChange) bool {
			var ok bool
			p.curves[kc.Dim], ok = remove(p.curves[kc.Dim], kc.Before.Time)
			return ok
		})
	case command.InsertKeys:
		return s.editKeys(c, func(p *param, kc command.KeyChange) bool {
			p.curves[kc.Dim] = upsert(p.curves[kc.Dim], kc.After)
			return true
		})
	case command.TrimLeft, command.TrimRight, command.MoveClip:
		if c.Field == "" {
			c.Field = fieldFor(c.Kind)
		}
		err := s.SetValue(c.Node, c.Field, c.After)
		if errors.Is(err, ErrNotFound) {
			s.log.Debug("value command skipped", zap.String("kind", c.Kind.String()), zap.String("node", string(c.Node)))
			return nil
		}
		return err
	}
	return fmt.Errorf("apply %s: unsupported command", c.Kind)
}

func fieldFor(k command.Kind) string {
	switch k {
	case command.TrimLeft:
		return anim.ValueFirstFrame
	case command.TrimRight:
		return anim.ValueLastFrame
	}
	return anim.ValueTimeOffset
}

// replaceKeys removes every source key first and then inserts the targets,
// so keys shifted onto each other's slots do not collide.
func (s *Scene) replaceKeys(c command.Command) error {
	s.mu.Lock()
	owners := map[anim.NodeID]bool{}
	moved := make([]command.KeyChange, 0, len(c.Keys))
	for _, kc := range c.Keys {
		p, err := s.curve(kc.Param, kc.Dim)
		if err != nil {
			continue
		}
		var ok bool
		p.curves[kc.Dim], ok = remove(p.curves[kc.Dim], kc.Before.Time)
		if !ok {
			continue
		}
		moved = append(moved, kc)
	}
	for _, kc := range moved {
		p := s.params[kc.Param]
		p.curves[kc.Dim] = upsert(p.curves[kc.Dim], kc.After)
		owners[p.node] = true
	}
	s.mu.Unlock()
	s.log.Debug("keys replaced", zap.String("kind", c.Kind.String()), zap.Int("applied", len(moved)), zap.Int("requested", len(c.Keys)))
	s.notify(keyNotices(owners))
	return nil
}

func (s *Scene) editKeys(c command.Command, fn func(*param, command.KeyChange) bool) error {
	s.mu.Lock()
	owners := map[anim.NodeID]bool{}
	for _, kc := range c.Keys {
		p, err := s.curve(kc.Param, kc.Dim)
		if err != nil {
			continue
		}
		if fn(p, kc) {
			owners[p.node] = true
		}
	}
	s.mu.Unlock()
	s.notify(keyNotices(owners))
	return nil
}

func keyNotices(owners map[anim.NodeID]bool) []notice {
	ns := make([]notice, 0, len(owners))
	for id := range owners {
		ns = append(ns, func(l Listener) { l.KeyframesChanged(id) })
	}
	return ns
}
