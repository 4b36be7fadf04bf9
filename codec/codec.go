// Package codec selects the byte encoding of trace reports.
//
// A report records the codec name next to its payload, so a reader picks the
// matching codec with ByName.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	gojson "github.com/goccy/go-json"
)

// ErrUnknownCodec is returned by ByName for names it does not know.
var ErrUnknownCodec = errors.New("unknown codec")

// Codec turns a trace report into bytes and back.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// JSON encodes reports with encoding/json.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSON) Name() string                       { return "json" }

// GoJSON encodes reports with github.com/goccy/go-json. Its output is
// byte-compatible with JSON, so either can read what the other wrote.
type GoJSON struct{}

func (GoJSON) Marshal(v any) ([]byte, error)      { return gojson.Marshal(v) }
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }
func (GoJSON) Name() string                       { return "go-json" }

// Default encodes reports when no codec is configured.
var Default Codec = GoJSON{}

// Names lists the names ByName accepts, besides the empty name.
func Names() []string { return []string{JSON{}.Name(), GoJSON{}.Name()} }

// ByName returns the codec called name. The empty name selects Default.
func ByName(name string) (Codec, error) {
	switch name {
	case "":
		return Default, nil
	case JSON{}.Name():
		return JSON{}, nil
	case GoJSON{}.Name():
		return GoJSON{}, nil
	default:
		return nil, fmt.Errorf("%w %q (want one of %v)", ErrUnknownCodec, name, Names())
	}
}
