// Package hostconfig handles .ochrerc.toml host-tool preferences. These
// configure the ochre binary itself (REPL prompt, debug disassembly),
// never the guest language: interpreted programs see no configuration
// surface at all.
package hostconfig

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const fileName = ".ochrerc.toml"

// Config is the parsed .ochrerc.toml. Every field has a usable zero-value
// default, so a missing file is simply Default().
type Config struct {
	// Prompt replaces the REPL's "> " prompt.
	Prompt string `toml:"prompt"`
	// Disassemble runs the debug disassembler after every compile, as if
	// -debug were always given.
	Disassemble bool `toml:"disassemble"`
	// Scrollback caps how many prior REPL lines are retained for the
	// session transcript.
	Scrollback int `toml:"scrollback"`
}

func Default() Config {
	return Config{Prompt: "> ", Scrollback: 1000}
}

// Load finds and parses the nearest .ochrerc.toml: first in dir (the
// directory of the invoked script; an empty dir, as the REPL passes, skips
// this step), then in $HOME. No file existing is not an error.
func Load(dir string) (Config, error) {
	cfg := Default()

	path, ok := findFile(dir)
	if !ok {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "cannot read %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse error in %s", path)
	}
	if cfg.Prompt == "" {
		cfg.Prompt = Default().Prompt
	}
	if cfg.Scrollback <= 0 {
		cfg.Scrollback = Default().Scrollback
	}
	return cfg, nil
}

func findFile(dir string) (string, bool) {
	if dir != "" {
		p := filepath.Join(dir, fileName)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, fileName)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
