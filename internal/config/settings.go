package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Engine holds the tunables of the dope sheet editor. Distances are in
// screen units.
type Engine struct {
	// MarkerWidth is the on-screen width of a keyframe marker.
	MarkerWidth float64 `yaml:"marker_width" validate:"gt=0"`
	// ClickDistance is how far from a keyframe a press still hits it.
	ClickDistance float64 `yaml:"click_distance" validate:"gte=0"`
	// TrimDistance is how far from a clip edge a press starts a trim.
	TrimDistance float64 `yaml:"trim_distance" validate:"gte=0"`
	// BoxPadding is the vertical padding of the selection bounding box.
	BoxPadding float64 `yaml:"box_padding" validate:"gte=0"`
	// IndicatorHalfWidth and IndicatorHeight size the time indicator handle
	// drawn at the bottom of the view.
	IndicatorHalfWidth float64 `yaml:"indicator_half_width" validate:"gt=0"`
	IndicatorHeight    float64 `yaml:"indicator_height" validate:"gt=0"`
	// RowHeight and ClipRowHeight are in row units.
	RowHeight     float64 `yaml:"row_height" validate:"gt=0"`
	ClipRowHeight float64 `yaml:"clip_row_height" validate:"gt=0"`
	// ZoomStep is the time-axis scale factor applied per wheel notch.
	ZoomStep float64 `yaml:"zoom_step" validate:"gt=1"`
}

// Log configures the zap logger.
type Log struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	// File overrides the log file location.
	File string `yaml:"file"`
}

// Settings is the content of the settings file.
type Settings struct {
	Engine Engine `yaml:"engine"`
	// Terminal replaces Engine in the TUI, where one screen unit is a cell.
	Terminal Engine `yaml:"terminal"`
	Log      Log    `yaml:"log"`
	Journal  string `yaml:"journal"`
}

// DefaultEngine returns the stock editor tunables.
func DefaultEngine() Engine {
	return Engine{
		MarkerWidth:        14,
		ClickDistance:      5,
		TrimDistance:       5,
		BoxPadding:         4,
		IndicatorHalfWidth: 7.5,
		IndicatorHeight:    7.5,
		RowHeight:          1,
		ClipRowHeight:      1,
		ZoomStep:           1.25,
	}
}

// TerminalEngine returns the tunables scaled to character cells.
func TerminalEngine() Engine {
	return Engine{
		MarkerWidth:        1,
		ClickDistance:      1,
		TrimDistance:       1,
		BoxPadding:         0,
		IndicatorHalfWidth: 1,
		IndicatorHeight:    1,
		RowHeight:          1,
		ClipRowHeight:      1,
		ZoomStep:           1.25,
	}
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	return &Settings{Engine: DefaultEngine(), Terminal: TerminalEngine(), Log: Log{Level: "info"}}
}

// ErrInvalidSettings wraps every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

var validate = validator.New()

// Validate checks the settings against their constraints.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(e.Namespace()), e.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// Load reads the settings file at path. A missing file yields the defaults;
// fields absent from the file keep their default values.
func Load(path string) (*Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes s to path, creating the directory when needed.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
