package config

import (
	_ "embed"
	"errors"
)

//go:embed embedded/camstack.toml
var defaultConfig []byte

// DefaultPipelineContent returns the embedded default pipeline file.
func DefaultPipelineContent() []byte {
	return defaultConfig
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
