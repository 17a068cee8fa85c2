//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
)

var errNoSystemd = errors.New("service management requires Linux with systemd")

func install(*slog.Logger, []string) error { return errNoSystemd }

func uninstall(*slog.Logger) error { return errNoSystemd }
