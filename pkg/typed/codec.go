package typed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Codec converts between a Go value and the plain text kept in the store.
type Codec interface {
	Name() string
	Encode(v any) (string, error)
	Decode(text string, v any) error
}

// JSON is the default codec: indented, field-for-field records.
var JSON Codec = jsonCodec{}

// YAML stores records as a YAML sequence.
var YAML Codec = yamlCodec{}

// CodecByName resolves "json" or "yaml" (case-insensitive, "yml" accepted).
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return nil, fmt.Errorf("unknown store format %q", name)
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Encode(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (jsonCodec) Decode(text string, v any) error {
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Encode(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (yamlCodec) Decode(text string, v any) error {
	if err := yaml.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	return nil
}
