// Package keymap loads additional remote layouts from YAML.
package keymap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/ir-dimmer/internal/logic"
)

// File is the top-level keymap document.
type File struct {
	Remotes []Remote `yaml:"remotes"`
}

// Remote is one remote-control layout.
type Remote struct {
	Name     string  `yaml:"name"`
	Protocol string  `yaml:"protocol"`
	Buttons  Buttons `yaml:"buttons"`
}

// Buttons lists the raw command codes bound to each action.
type Buttons struct {
	Power []uint16 `yaml:"power"`
	Up    []uint16 `yaml:"up"`
	Down  []uint16 `yaml:"down"`
}

// Parse decodes and validates a keymap document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse keymap: %w", err)
	}
	for i, r := range f.Remotes {
		if _, err := logic.ParseProtocol(r.Protocol); err != nil {
			return nil, fmt.Errorf("remote %d (%q): %w", i, r.Name, err)
		}
	}
	return &f, nil
}

// Load reads and parses the keymap file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keymap: %w", err)
	}
	return Parse(data)
}

// Apply registers every layout in f with m, overriding built-in bindings for
// the same codes. It returns the number of codes registered.
func (f *File) Apply(m *logic.Mapper) int {
	n := 0
	for _, r := range f.Remotes {
		// Validated by Parse
		p, _ := logic.ParseProtocol(r.Protocol)
		n += register(m, p, r.Buttons.Power, logic.ActionPowerToggle)
		n += register(m, p, r.Buttons.Up, logic.ActionLevelUp)
		n += register(m, p, r.Buttons.Down, logic.ActionLevelDown)
	}
	return n
}

func register(m *logic.Mapper, p logic.Protocol, codes []uint16, a logic.Action) int {
	for _, c := range codes {
		m.Register(p, c, a)
	}
	return len(codes)
}
