package config

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const defaultHeader = `# webdiag configuration
#
# diagnostics configures the default registration. Each entry under
# diagnostics.prefixes configures the registration attached with that prefix
# and accepts the same keys. log_level maps category patterns ("*" allowed)
# to trace, debug, information, warning, error, critical or none.
`

// WriteDefault writes the default configuration as YAML to path on fs. It
// refuses to overwrite an existing file.
func WriteDefault(fs afero.Fs, path string) error {
	if exists, err := afero.Exists(fs, path); err != nil {
		return fmt.Errorf("failed to check config file: %w", err)
	} else if exists {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := MarshalYAML(Default())
	if err != nil {
		return err
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MarshalYAML renders cfg as a commented YAML document.
func MarshalYAML(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(defaultHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}
