// Package trace encodes the diagnostic view of a retention set.
//
// A Report captures, for one request, every retained item with the last
// verdict of each appraiser and the derived composite score. Reports are
// meant for logs and debugging; the layout is not a stable format.
//
//	rep := trace.NewReport(requestID, set)
//	data, _ := trace.Marshal(rep, trace.WithCompression(trace.CompressionZSTD))
package trace

import (
	"fmt"
	"io"

	"github.com/hupe1980/shortlist/codec"
	"github.com/hupe1980/shortlist/retention"
)

// Snapshotter is the part of a retention set a Report needs.
type Snapshotter[K comparable] interface {
	Trace() []retention.TraceEntry[K]
	Stats() retention.Stats
	Cap() int
	Width() int
}

// Report is the diagnostic snapshot of one retention set.
type Report[K comparable] struct {
	RequestID string                    `json:"request_id,omitempty"`
	Capacity  int                       `json:"capacity"`
	Width     int                       `json:"width"`
	Stats     retention.Stats           `json:"stats"`
	Entries   []retention.TraceEntry[K] `json:"entries"`
}

// NewReport snapshots s.
func NewReport[K comparable](requestID string, s Snapshotter[K]) Report[K] {
	return Report[K]{
		RequestID: requestID,
		Capacity:  s.Cap(),
		Width:     s.Width(),
		Stats:     s.Stats(),
		Entries:   s.Trace(),
	}
}

type options struct {
	codec       codec.Codec
	compression Compression
}

// Option configures Marshal and Write.
type Option func(*options)

// WithCodec sets the codec. If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression sets the compression.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

func newOptions(optFns []Option) options {
	o := options{codec: codec.Default}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// Marshal encodes v. The first byte records the compression.
func Marshal(v any, optFns ...Option) ([]byte, error) {
	o := newOptions(optFns)
	raw, err := o.codec.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("trace: %s marshal: %w", o.codec.Name(), err)
	}
	return compress(o.compression, raw)
}

// Unmarshal decodes data produced by Marshal with the same codec.
func Unmarshal(data []byte, v any, optFns ...Option) error {
	o := newOptions(optFns)
	raw, err := decompress(data)
	if err != nil {
		return fmt.Errorf("trace: decompress: %w", err)
	}
	return o.codec.Unmarshal(raw, v)
}

// Write marshals v to w.
func Write(w io.Writer, v any, optFns ...Option) error {
	data, err := Marshal(v, optFns...)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
