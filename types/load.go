//go:build !tinygo

package types

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"isrcell-go/errcode"
)

// LoadConfig reads a YAML document over DefaultConfig: keys that are absent
// keep their default. Unknown keys are rejected. Durations use Go syntax
// ("250ms").
func LoadConfig(r io.Reader) (Config, error) {
	c := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Config{}, &errcode.E{C: errcode.InvalidConfig, Op: "config.load", Err: err}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ParseConfig is LoadConfig over a byte slice.
func ParseConfig(b []byte) (Config, error) { return LoadConfig(bytes.NewReader(b)) }

// YAML encodes c in the form LoadConfig reads.
func (c Config) YAML() ([]byte, error) { return yaml.Marshal(c) }
