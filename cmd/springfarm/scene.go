package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/san-kum/springfarm/internal/config"
	"github.com/spf13/cobra"
)

// loadScene resolves the --scene and --preset flags into a config and a run
// name. A scene file wins over a preset. Flags the user set explicitly
// override the values the file or preset carries.
func loadScene(cmd *cobra.Command) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		name string
	)

	if sceneFile != "" {
		loaded, err := config.Load(sceneFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load scene: %w", err)
		}
		cfg = loaded
		name = sceneName(sceneFile, loaded.Name)
	} else {
		p := preset
		if p == "" {
			p = "default"
		}
		cfg = config.GetPreset(p)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", p, config.ListPresets())
		}
		name = p
	}

	flags := cmd.Flags()
	if flags.Lookup("steps") != nil && flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Lookup("record-every") != nil && flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	if flags.Lookup("integrator") != nil && flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cfg.Steps < 0 {
		return nil, "", fmt.Errorf("steps must not be negative: %d", cfg.Steps)
	}
	return cfg, name, nil
}

// sceneName prefers the name stored in the file, then the file's base name.
// Run ids are built from it, so path separators and spaces are replaced.
func sceneName(path, stored string) string {
	name := stored
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ':
			return '_'
		}
		return r
	}, name)
}

// newLogger builds the process logger. The terminal UI owns the screen, so
// when it runs without --log-file the log is discarded.
func newLogger(tui bool) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
	)
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case tui:
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: logFile != "",
		Prefix:          "springfarm",
	})
	return logger, closeFn, nil
}
