// Package codec reads GeoJSON or coordinate documents in JSON or YAML and
// writes results back in either format.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tdewolff/minify/v2"
	jsonmin "github.com/tdewolff/minify/v2/json"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const mimeJSON = "application/json"

// Decode parses a JSON or YAML document into generic values. JSON numbers
// are kept as json.Number; quoted values stay strings in both formats.
func Decode(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	if trimmed[0] == '{' || trimmed[0] == '[' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()

		var v any
		err := dec.Decode(&v)
		if err == nil {
			return v, nil
		}

		// flow-style YAML also starts with { or [
		var y any
		if yerr := yaml.Unmarshal(trimmed, &y); yerr != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return y, nil
	}

	var v any
	if err := yaml.Unmarshal(trimmed, &v); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return v, nil
}

// Read decodes everything from r.
func Read(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// ReadFile decodes a file, or stdin when path is empty or "-".
func ReadFile(path string) (any, error) {
	if path == "" || path == "-" {
		return Read(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Encoder writes values as indented JSON, minified JSON or YAML.
type Encoder struct {
	Format string
	Minify bool
}

// ContentType returns the MIME type matching the encoder format.
func (e Encoder) ContentType() string {
	if e.Format == FormatYAML {
		return "application/yaml"
	}
	return mimeJSON
}

// Marshal encodes v.
func (e Encoder) Marshal(v any) ([]byte, error) {
	switch e.Format {
	case FormatYAML:
		return yaml.Marshal(v)
	case "", FormatJSON:
	default:
		return nil, fmt.Errorf("unknown output format %q", e.Format)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	if !e.Minify {
		return append(data, '\n'), nil
	}
	return MinifyJSON(data)
}

// Encode writes v to w.
func (e Encoder) Encode(w io.Writer, v any) error {
	data, err := e.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// MinifyJSON strips insignificant whitespace from a JSON document. Numbers
// are kept as written.
func MinifyJSON(data []byte) ([]byte, error) {
	m := minify.New()
	m.Add(mimeJSON, &jsonmin.Minifier{KeepNumbers: true})

	out, err := m.Bytes(mimeJSON, data)
	if err != nil {
		return nil, fmt.Errorf("minify json: %w", err)
	}
	return out, nil
}
