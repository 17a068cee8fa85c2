package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Alia5/macropad/internal/configpaths"
	"github.com/Alia5/macropad/internal/keymapfile"
	"github.com/Alia5/macropad/keypad"
)

// KeymapCommand groups keymap subcommands.
type KeymapCommand struct {
	Dump  KeymapDump  `cmd:"" help:"Write a keymap in the chosen format"`
	Check KeymapCheck `cmd:"" help:"Validate a keymap file"`
}

// KeymapDump writes the built-in keymap, or --keymap, as json/yaml/toml.
type KeymapDump struct {
	Keymap string `help:"Keymap file to convert; empty dumps the built-in keymap" env:"MACROPAD_KEYMAP"`
	Format string `help:"Output format" enum:"json,yaml,toml" default:"yaml"`
	Output string `help:"Destination file; empty writes to stdout"`
}

func (k *KeymapDump) Run() error {
	km, err := loadKeymap(k.Keymap)
	if err != nil {
		return err
	}
	if k.Output == "" {
		return keymapfile.Encode(os.Stdout, km, k.Format)
	}
	if err := configpaths.EnsureDir(k.Output); err != nil {
		return err
	}
	f, err := os.Create(k.Output)
	if err != nil {
		return err
	}
	if err := keymapfile.Encode(f, km, k.Format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// KeymapCheck loads a keymap file and prints a summary of its bindings.
type KeymapCheck struct {
	File string `arg:"" help:"Keymap file" type:"existingfile"`
}

func (k *KeymapCheck) Run() error {
	return k.Execute(os.Stdout)
}

func (k *KeymapCheck) Execute(out io.Writer) error {
	km, err := keymapfile.Load(k.File)
	if err != nil {
		return err
	}
	printSummary(out, km)
	return nil
}

func printSummary(out io.Writer, km *keypad.Keymap) {
	l := km.Layout()
	fmt.Fprintf(out, "layout: %d keys, primary %d, secondary %d\n", l.Size, l.Primary, l.Secondary)
	for m := range keypad.NumModes {
		mode := keypad.Mode(m)
		fmt.Fprintf(out, "%s:\n", mode)
		for key := range l.Size {
			if slot := km.Slot(mode, key); !slot.IsNoop() {
				fmt.Fprintf(out, "  %d: %s\n", key, slot)
			}
		}
	}
}
