// Package cmd holds the kong commands of the macropad binary.
package cmd

// CLI is the root of the command tree.
type CLI struct {
	ConfigFile string    `name:"config" help:"Config file (json, yaml or toml)" env:"MACROPAD_CONFIG" placeholder:"PATH"`
	Log        LogConfig `embed:"" prefix:"log."`

	Run     Run            `cmd:"" help:"Scan the keypad and send reports to the paired host"`
	Monitor Monitor        `cmd:"" help:"Pair with a keypad as a host and print what it sends"`
	Keymap  KeymapCommand  `cmd:"" help:"Inspect and convert keymaps"`
	Config  ConfigCommand  `cmd:"" help:"Manage configuration files"`
	Service ServiceCommand `cmd:"" help:"Install or remove the systemd service"`
}

// LogConfig is shared by every command.
type LogConfig struct {
	Level   string `help:"Log level" default:"info" enum:"trace,debug,info,warn,error" env:"MACROPAD_LOG_LEVEL"`
	File    string `help:"Also write logs to this file" env:"MACROPAD_LOG_FILE"`
	RawFile string `help:"Hex-dump every link frame to this file" env:"MACROPAD_LOG_RAW_FILE"`
}
