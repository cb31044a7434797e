package scene

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/VoxDroid/dopesheet/internal/anim"
	"github.com/VoxDroid/dopesheet/internal/nameutil"
)

// File is the on-disk scene description.
type File struct {
	Name  string     `yaml:"name"`
	Nodes []NodeSpec `yaml:"nodes" validate:"dive"`
}

// NodeSpec describes one node of the scene.
type NodeSpec struct {
	ID     string             `yaml:"id" validate:"required"`
	Kind   string             `yaml:"kind" validate:"omitempty,oneof=generic reader retime timeoffset framerange group"`
	Label  string             `yaml:"label"`
	Inputs []string           `yaml:"inputs"`
	Group  string             `yaml:"group"`
	Panel  bool               `yaml:"panel"`
	Values map[string]float64 `yaml:"values"`
	Params []ParamSpec        `yaml:"params" validate:"dive"`
}

// ParamSpec describes an animatable parameter and its curves.
type ParamSpec struct {
	Name       string      `yaml:"name" validate:"required"`
	Dimensions int         `yaml:"dimensions" validate:"gte=0,lte=16"`
	Curves     []CurveSpec `yaml:"curves" validate:"dive"`
}

// CurveSpec holds the keyframes of one dimension.
type CurveSpec struct {
	Dim  int       `yaml:"dim" validate:"gte=0"`
	Keys []KeySpec `yaml:"keys" validate:"dive"`
}

// KeySpec is a serialized keyframe.
type KeySpec struct {
	Time   float64 `yaml:"time"`
	Value  float64 `yaml:"value"`
	Interp string  `yaml:"interp,omitempty" validate:"omitempty,oneof=constant linear smooth catmullrom cubic horizontal break"`
}

// ErrInvalid is wrapped by every validation failure of a scene file.
var ErrInvalid = errors.New("invalid scene")

var validate = validator.New()

// Load reads and validates the scene file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates a YAML scene description.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks struct constraints, ids and cross references.
func (f *File) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	ids := map[string]bool{}
	for i, n := range f.Nodes {
		f.Nodes[i].Label, _ = nameutil.SanitizeLabel(n.Label)
		if err := nameutil.ValidateID(n.ID); err != nil {
			return fmt.Errorf("%w: node %q: %v", ErrInvalid, n.ID, err)
		}
		if ids[n.ID] {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalid, n.ID)
		}
		ids[n.ID] = true
		if n.Kind == "reader" {
			v, err := readerValues(n.Values)
			if err != nil {
				return fmt.Errorf("%w: node %q: %v", ErrInvalid, n.ID, err)
			}
			f.Nodes[i].Values = v
		}
		params := map[string]bool{}
		for _, p := range n.Params {
			if err := nameutil.ValidateParamName(p.Name); err != nil {
				return fmt.Errorf("%w: node %q: %v", ErrInvalid, n.ID, err)
			}
			if params[p.Name] {
				return fmt.Errorf("%w: node %q: duplicate param %q", ErrInvalid, n.ID, p.Name)
			}
			params[p.Name] = true
			for _, c := range p.Curves {
				if c.Dim >= dims(p) {
					return fmt.Errorf("%w: node %q param %q: dim %d out of range", ErrInvalid, n.ID, p.Name, c.Dim)
				}
			}
		}
	}
	for _, n := range f.Nodes {
		for _, in := range n.Inputs {
			if !ids[in] {
				return fmt.Errorf("%w: node %q: unknown input %q", ErrInvalid, n.ID, in)
			}
		}
		if n.Group != "" && !ids[n.Group] {
			return fmt.Errorf("%w: node %q: unknown group %q", ErrInvalid, n.ID, n.Group)
		}
	}
	return nil
}

// readerValues folds an explicit reader startingTime into timeOffset, the
// value the scene keeps. The starting time is always firstFrame + timeOffset.
func readerValues(values map[string]float64) (map[string]float64, error) {
	start, ok := values[anim.ValueStartingTime]
	if !ok {
		return values, nil
	}
	first, ok := values[anim.ValueFirstFrame]
	if !ok {
		return nil, fmt.Errorf("%s requires %s", anim.ValueStartingTime, anim.ValueFirstFrame)
	}
	offset := start - first
	if cur, ok := values[anim.ValueTimeOffset]; ok && cur != offset {
		return nil, fmt.Errorf("%s %g disagrees with %s %g", anim.ValueStartingTime, start, anim.ValueTimeOffset, cur)
	}
	out := make(map[string]float64, len(values))
	for k, v := range values {
		if k != anim.ValueStartingTime {
			out[k] = v
		}
	}
	out[anim.ValueTimeOffset] = offset
	return out, nil
}

func dims(p ParamSpec) int {
	if p.Dimensions < 1 {
		return 1
	}
	return p.Dimensions
}

// Marshal encodes f as YAML.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (k KeySpec) keyframe() (anim.Keyframe, error) {
	interp, err := anim.ParseInterpolation(k.Interp)
	if err != nil {
		return anim.Keyframe{}, err
	}
	return anim.Keyframe{Time: k.Time, Value: k.Value, Interp: interp}, nil
}
