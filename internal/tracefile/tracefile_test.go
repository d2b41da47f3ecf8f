package tracefile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/algo-rf/internal/testutil"
	"github.com/cwbudde/algo-rf/rf/trace"
)

const sampleYAML = `traces:
  - network: XX
    station: SYN
    channel: HHR
    delta: 0.5
    starttime: 2020-01-01T00:00:00Z
    onset: 2020-01-01T00:00:02Z
    slowness: 6.4
    inclination: 22.5
    data: [0, 0.5, 1, 0.5]
  - channel: HHR
    delta: 0.5
    starttime: 2020-01-01T01:00:00Z
    lead: 1.5
    slowness: 7
    inclination: 24
    data: [1, 2, 3]
`

func TestDecodeYAML(t *testing.T) {
	s, err := Decode(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(s) != 2 {
		t.Fatalf("len = %d, want 2", len(s))
	}

	first := s[0]
	if first.ID() != "XX.SYN.HHR" || first.Delta != 0.5 || first.Slowness != 6.4 || first.Inclination != 22.5 {
		t.Fatalf("unexpected metadata: %+v", first)
	}
	if first.LeadTime() != 2 {
		t.Fatalf("LeadTime = %v, want 2", first.LeadTime())
	}
	testutil.RequireSliceNearlyEqual(t, first.Data, []float64{0, 0.5, 1, 0.5}, 0)

	if s[1].LeadTime() != 1.5 {
		t.Fatalf("lead-based onset: LeadTime = %v, want 1.5", s[1].LeadTime())
	}
}

func TestDecodeJSON(t *testing.T) {
	const doc = `{"traces": [{"channel": "BHR", "delta": 0.1, "starttime": "2021-06-01T12:00:00Z",
		"lead": 0.2, "slowness": 5.5, "inclination": 19, "data": [1, 2]}]}`
	s, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s[0].Channel != "BHR" || s[0].Len() != 2 {
		t.Fatalf("unexpected trace: %+v", s[0])
	}
	want := time.Date(2021, 6, 1, 12, 0, 0, 200_000_000, time.UTC)
	if !s[0].Onset.Equal(want) {
		t.Fatalf("Onset = %v, want %v", s[0].Onset, want)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{name: "empty document", doc: "", want: ErrNoTraces},
		{name: "no traces", doc: "traces: []\n", want: ErrNoTraces},
		{name: "empty data", doc: "traces:\n  - channel: HHR\n    delta: 0.1\n", want: trace.ErrEmptyData},
		{name: "zero delta", doc: "traces:\n  - channel: HHR\n    data: [1]\n", want: trace.ErrInvalidDelta},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	failing := map[string]string{
		"unknown field":    "traces:\n  - channel: HHR\n    delta: 0.1\n    data: [1]\n    gain: 2\n",
		"bad time":         "traces:\n  - channel: HHR\n    delta: 0.1\n    data: [1]\n    starttime: yesterday\n",
		"onset and lead":   "traces:\n  - channel: HHR\n    delta: 0.1\n    data: [1]\n    onset: 2020-01-01T00:00:00Z\n    lead: 1\n",
		"malformed syntax": "traces: [\n",
	}
	for name, doc := range failing {
		if _, err := Decode(strings.NewReader(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	rf := testutil.ReceiverFunction{
		Lead:         5,
		Duration:     10,
		Delta:        0.25,
		Sigma:        0.2,
		RayParameter: 0.06,
		Vp:           6.3,
		Arrivals:     []testutil.Arrival{{Time: 4, Amplitude: 0.5}},
	}
	in := trace.Stream{rf.Build(), rf.Build()}

	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].ID() != in[i].ID() || !out[i].Onset.Equal(in[i].Onset) || !out[i].StartTime.Equal(in[i].StartTime) {
			t.Fatalf("trace %d metadata differs: %+v vs %+v", i, out[i], in[i])
		}
		if out[i].Slowness != in[i].Slowness || out[i].Inclination != in[i].Inclination {
			t.Fatalf("trace %d geometry differs", i)
		}
		testutil.RequireSliceNearlyEqual(t, out[i].Data, in[i].Data, 0)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rf.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(s) != 2 {
		t.Fatalf("len = %d, want 2", len(s))
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
