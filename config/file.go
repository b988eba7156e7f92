package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// File is the optional TOML configuration.
//
//	[trust]
//	extra_prefixes = ["https://intranet.example"]
//
//	[viewer]
//	width = 100
//
//	[log]
//	file = "/var/tmp/docsentry.log"
//	level = "debug"
type File struct {
	Trust struct {
		ExtraPrefixes []string `toml:"extra_prefixes"`
	} `toml:"trust"`
	Viewer struct {
		Width int `toml:"width"`
	} `toml:"viewer"`
	Log struct {
		File  string `toml:"file"`
		Level string `toml:"level"`
	} `toml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() File {
	var f File
	f.Log.File = filepath.Join(os.TempDir(), "docsentry.log")
	f.Log.Level = "info"
	return f
}

// Load reads a TOML file on top of Default. An empty path returns Default.
func Load(path string) (File, error) {
	f := Default()
	if path == "" {
		return f, nil
	}
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return f, fmt.Errorf("config %s: %w", path, err)
	}
	if f.Viewer.Width < 0 {
		return f, fmt.Errorf("config %s: viewer.width must not be negative", path)
	}
	return f, nil
}

// TrustedPrefixes returns the defaults plus any non-blank extras.
// A blank prefix would match every string, so those are dropped.
func (f File) TrustedPrefixes() []string {
	out := make([]string, 0, len(DefaultTrustedPrefixes)+len(f.Trust.ExtraPrefixes))
	out = append(out, DefaultTrustedPrefixes...)
	for _, p := range f.Trust.ExtraPrefixes {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
