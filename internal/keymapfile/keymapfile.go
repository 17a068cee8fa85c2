// Package keymapfile reads and writes keymaps as JSON, YAML or TOML.
//
//	layout:
//	  size: 10
//	  primary: 9
//	  secondary: 4
//	bindings:
//	  - mode: base
//	    key: 3
//	    actions:
//	      - key: Home
//	      - mods: [shift]
//	        key: End
//	      - key: Delete
package keymapfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alia5/macropad/hid"
	"github.com/Alia5/macropad/keypad"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for formats other than json, yaml and toml.
var ErrUnknownFormat = errors.New("unknown keymap format")

// File is the on-disk keymap. A zero Layout means keypad.DefaultLayout.
type File struct {
	Layout   keypad.Layout `json:"layout" yaml:"layout" toml:"layout"`
	Bindings []Binding     `json:"bindings" yaml:"bindings" toml:"bindings"`
}

// Binding assigns a slot to one key in one mode.
type Binding struct {
	Mode    string       `json:"mode" yaml:"mode" toml:"mode"`
	Key     int          `json:"key" yaml:"key" toml:"key"`
	Actions []ActionSpec `json:"actions" yaml:"actions" toml:"actions"`
}

// ActionSpec is one action: modifiers and key name, text, or both.
type ActionSpec struct {
	Mods []string `json:"mods,omitempty" yaml:"mods,omitempty" toml:"mods,omitempty"`
	Key  string   `json:"key,omitempty" yaml:"key,omitempty" toml:"key,omitempty"`
	Text string   `json:"text,omitempty" yaml:"text,omitempty" toml:"text,omitempty"`
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Load reads and validates the keymap at path.
func Load(path string) (*keypad.Keymap, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	km, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return km, nil
}

// Decode parses r in format and compiles the result.
func Decode(r io.Reader, format string) (*keypad.Keymap, error) {
	var f File
	var err error
	switch format {
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&f)
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&f)
	case "toml":
		err = toml.NewDecoder(r).Strict(true).Decode(&f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty keymap")
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}
	return f.Keymap()
}

// Keymap converts f into a validated keymap.
func (f File) Keymap() (*keypad.Keymap, error) {
	layout := f.Layout
	if layout == (keypad.Layout{}) {
		layout = keypad.DefaultLayout()
	}
	var tables [keypad.NumModes]keypad.Table
	for i := range tables {
		tables[i] = keypad.Table{}
	}
	for i, b := range f.Bindings {
		mode, err := keypad.ParseMode(b.Mode)
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
		if _, dup := tables[mode][b.Key]; dup {
			return nil, fmt.Errorf("binding %d: duplicate binding for %s key %d", i, mode, b.Key)
		}
		slot := make(keypad.Slot, 0, len(b.Actions))
		for j, spec := range b.Actions {
			a, err := spec.action()
			if err != nil {
				return nil, fmt.Errorf("binding %d (%s key %d) action %d: %w", i, mode, b.Key, j, err)
			}
			slot = append(slot, a)
		}
		tables[mode][b.Key] = slot
	}
	return keypad.NewKeymap(layout, tables)
}

func (s ActionSpec) action() (keypad.Action, error) {
	var a keypad.Action
	for _, name := range s.Mods {
		bit, err := hid.ParseModifier(name)
		if err != nil {
			return a, err
		}
		a.Modifiers |= bit
	}
	if s.Key != "" {
		code, err := hid.ParseKey(s.Key)
		if err != nil {
			return a, err
		}
		a.Key = &code
	}
	if s.Text != "" {
		text := s.Text
		a.Text = &text
	}
	return a, nil
}

// FromKeymap returns the file form of km, bindings ordered by mode then key.
func FromKeymap(km *keypad.Keymap) File {
	f := File{Layout: km.Layout()}
	for m := range keypad.NumModes {
		mode := keypad.Mode(m)
		for key := range km.Layout().Size {
			slot := km.Slot(mode, key)
			if len(slot) == 0 {
				continue
			}
			b := Binding{Mode: mode.String(), Key: key}
			for _, a := range slot {
				var spec ActionSpec
				if a.HasKey() {
					spec.Mods = hid.ModifierNames(a.Modifiers)
					spec.Key = hid.FormatKey(*a.Key)
				}
				if a.HasText() {
					spec.Text = *a.Text
				}
				b.Actions = append(b.Actions, spec)
			}
			f.Bindings = append(f.Bindings, b)
		}
	}
	return f
}

// Encode writes km to w in format.
func Encode(w io.Writer, km *keypad.Keymap, format string) error {
	f := FromKeymap(km)
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Order(toml.OrderPreserve).Encode(f)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
