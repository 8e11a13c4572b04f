// Package definition loads countdown definition files. A definition names a
// deadline, an optional start, and what the host does when the deadline passes.
package definition

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ensigniasec/run-countdown/internal/countdown"
	"github.com/ensigniasec/run-countdown/internal/validate"
)

// Expiry policies.
const (
	OnExpireReload = "reload"
	OnExpireExit   = "exit"
)

var (
	// ErrTooLarge is returned for files over maxDefinitionSize.
	ErrTooLarge = errors.New("definition file too large")
	// ErrUnknownFormat is returned for files that are neither JSON nor YAML.
	ErrUnknownFormat = errors.New("unknown definition file extension")
)

// Definition is one countdown.
type Definition struct {
	Name     string `json:"name"      yaml:"name"`
	Deadline string `json:"deadline"  yaml:"deadline"  validate:"required,datetime_like"`
	Start    string `json:"start"     yaml:"start"     validate:"omitempty,datetime_like"`
	OnExpire string `json:"on_expire" yaml:"on_expire" validate:"omitempty,oneof=reload exit"`

	// Path is the file the definition was read from.
	Path string `json:"-" yaml:"-"`
}

// Load reads and validates the definition at path.
func Load(path string) (*Definition, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var def Definition
	if err := unmarshal(path, data, &def); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := validate.Struct(def); err != nil {
		return nil, fmt.Errorf("invalid definition %s: %w", path, err)
	}
	def.Path = path
	if def.Name == "" {
		def.Name = defaultName(path)
	}
	if def.OnExpire == "" {
		def.OnExpire = OnExpireReload
	}
	return &def, nil
}

// Window parses the definition's deadline and start.
func (d *Definition) Window() countdown.Window {
	return countdown.Window{
		Deadline: countdown.Parse(d.Deadline),
		Start:    countdown.Parse(d.Start),
	}
}

// Source re-reads the file on every call, so edits take effect on reload.
func (d *Definition) Source() countdown.Source {
	return func() (countdown.Window, error) {
		fresh, err := Load(d.Path)
		if err != nil {
			return countdown.Window{}, err
		}
		return fresh.Window(), nil
	}
}

// ExitOnExpire reports whether the host should stop instead of reloading.
func (d *Definition) ExitOnExpire() bool {
	return d.OnExpire == OnExpireExit
}

// defaultName derives "exam" from ".../exam.countdown.yaml".
func defaultName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, countdownSuffix)
}
