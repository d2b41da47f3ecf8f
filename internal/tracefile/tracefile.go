// Package tracefile reads and writes receiver-function traces as YAML
// documents. JSON input is accepted as well since it is valid YAML.
//
// A file holds a list of traces:
//
//	traces:
//	  - network: XX
//	    station: SYN
//	    channel: HHR
//	    delta: 0.05
//	    starttime: 2020-01-01T00:00:00Z
//	    onset: 2020-01-01T00:00:05Z   # or lead: 5
//	    slowness: 6.4
//	    inclination: 22.1
//	    data: [0, 0.1, 0.3]
package tracefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-rf/rf/trace"
)

var ErrNoTraces = errors.New("tracefile: file contains no traces")

type document struct {
	Traces []record `yaml:"traces"`
}

type record struct {
	Network     string    `yaml:"network,omitempty"`
	Station     string    `yaml:"station,omitempty"`
	Channel     string    `yaml:"channel"`
	Delta       float64   `yaml:"delta"`
	StartTime   string    `yaml:"starttime,omitempty"`
	Onset       string    `yaml:"onset,omitempty"`
	Lead        *float64  `yaml:"lead,omitempty"`
	Slowness    float64   `yaml:"slowness"`
	Inclination float64   `yaml:"inclination"`
	Data        []float64 `yaml:"data,flow"`
}

// Decode reads a trace file from r. Unknown keys are rejected.
func Decode(r io.Reader) (trace.Stream, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoTraces
		}
		return nil, fmt.Errorf("tracefile: decode: %w", err)
	}
	if len(doc.Traces) == 0 {
		return nil, ErrNoTraces
	}

	stream := make(trace.Stream, 0, len(doc.Traces))
	for i, rec := range doc.Traces {
		tr, err := rec.toTrace()
		if err != nil {
			return nil, fmt.Errorf("tracefile: trace %d: %w", i, err)
		}
		stream = append(stream, tr)
	}
	return stream, nil
}

// ReadFile decodes the trace file at path.
func ReadFile(path string) (trace.Stream, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	stream, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stream, nil
}

// Encode writes s to w. Onsets are written as absolute times.
func Encode(w io.Writer, s trace.Stream) error {
	doc := document{Traces: make([]record, len(s))}
	for i, tr := range s {
		doc.Traces[i] = fromTrace(tr)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("tracefile: encode: %w", err)
	}
	return enc.Close()
}

func (rec record) toTrace() (*trace.Trace, error) {
	tr := &trace.Trace{
		Network:     rec.Network,
		Station:     rec.Station,
		Channel:     rec.Channel,
		Data:        rec.Data,
		Delta:       rec.Delta,
		Slowness:    rec.Slowness,
		Inclination: rec.Inclination,
	}

	var err error
	if rec.StartTime != "" {
		if tr.StartTime, err = parseTime(rec.StartTime); err != nil {
			return nil, fmt.Errorf("starttime: %w", err)
		}
	}

	switch {
	case rec.Onset != "" && rec.Lead != nil:
		return nil, errors.New("onset and lead are mutually exclusive")
	case rec.Onset != "":
		if tr.Onset, err = parseTime(rec.Onset); err != nil {
			return nil, fmt.Errorf("onset: %w", err)
		}
	case rec.Lead != nil:
		tr.Onset = tr.StartTime.Add(time.Duration(*rec.Lead * float64(time.Second)))
	default:
		tr.Onset = tr.StartTime
	}

	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return tr, nil
}

func fromTrace(tr *trace.Trace) record {
	rec := record{
		Network:     tr.Network,
		Station:     tr.Station,
		Channel:     tr.Channel,
		Delta:       tr.Delta,
		Slowness:    tr.Slowness,
		Inclination: tr.Inclination,
		Data:        tr.Data,
	}
	if !tr.StartTime.IsZero() {
		rec.StartTime = tr.StartTime.UTC().Format(time.RFC3339Nano)
	}
	if !tr.Onset.IsZero() {
		rec.Onset = tr.Onset.UTC().Format(time.RFC3339Nano)
	}
	return rec
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
