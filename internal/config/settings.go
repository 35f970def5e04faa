package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when config.yaml fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Backend names
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendHTTP   = "http"
)

// Settings models config.yaml.
type Settings struct {
	// Backend selects where documents live: file, badger or http
	Backend string `yaml:"backend" validate:"oneof=file badger http"`

	// Server is the document service URL used by the http backend
	Server string `yaml:"server" validate:"required_if=Backend http,omitempty,url"`

	// Listen is the address `docmerge serve` binds to
	Listen string `yaml:"listen" validate:"required,hostname_port"`

	Log LogSettings `yaml:"log"`

	Merge MergeSettings `yaml:"merge"`
}

// LogSettings configures the slog logger.
type LogSettings struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// MergeSettings holds defaults for insert and replace.
type MergeSettings struct {
	// Mode is the default planning mode: safe, ask or update
	Mode string `yaml:"mode" validate:"oneof=safe ask update"`

	// AnchorSide is the default split side: start, end or middle
	AnchorSide string `yaml:"anchor_side" validate:"oneof=start end middle"`

	// Attribution appends " (from: <source>)" after merged content
	Attribution bool `yaml:"attribution"`

	// SourceAnnotation adds a "Added from <source>" annotation on merged content
	SourceAnnotation bool `yaml:"source_annotation"`

	// RequireRevision guards every batch with the revision it was planned on
	RequireRevision bool `yaml:"require_revision"`

	// IncludeResolved also protects resolved annotations
	IncludeResolved bool `yaml:"include_resolved"`
}

// DefaultSettings returns the settings used when config.yaml is absent.
func DefaultSettings() *Settings {
	return &Settings{
		Backend: BackendFile,
		Listen:  "127.0.0.1:8474",
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
		Merge: MergeSettings{
			Mode:             "safe",
			AnchorSide:       "start",
			Attribution:      false,
			SourceAnnotation: true,
		},
	}
}

var settingsValidate = validator.New()

// Validate checks the settings against their constraints.
func (s *Settings) Validate() error {
	if err := settingsValidate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// LoadSettings reads config.yaml at path over the defaults. A missing file
// yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveSettings writes settings to path as YAML.
func SaveSettings(path string, s *Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
