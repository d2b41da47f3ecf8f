package trace

import (
	"fmt"
	"sort"
	"strings"
)

// Stream is an ordered collection of traces.
type Stream []*Trace

// Select returns the traces recorded on channel, in stream order.
func (s Stream) Select(channel string) Stream {
	var out Stream
	for _, tr := range s {
		if tr.Channel == channel {
			out = append(out, tr)
		}
	}
	return out
}

// Channels returns the distinct channel codes in first-seen order.
func (s Stream) Channels() []string {
	seen := make(map[string]struct{}, 3)
	var out []string
	for _, tr := range s {
		if _, ok := seen[tr.Channel]; ok {
			continue
		}
		seen[tr.Channel] = struct{}{}
		out = append(out, tr.Channel)
	}
	return out
}

// CheckChannel returns the channel shared by every trace in s.
// The first trace whose channel differs is reported in the error.
func (s Stream) CheckChannel() (string, error) {
	if len(s) == 0 {
		return "", ErrNoTraces
	}
	channel := s[0].Channel
	for _, tr := range s[1:] {
		if tr.Channel != channel {
			return "", fmt.Errorf("%w: expected %s, found %s", ErrChannelMismatch, channel, tr.Channel)
		}
	}
	return channel, nil
}

// Data returns the sample slices of all traces. The slices are shared, not copied.
func (s Stream) Data() [][]float64 {
	out := make([][]float64, len(s))
	for i, tr := range s {
		out[i] = tr.Data
	}
	return out
}

var (
	zneRank = map[byte]int{'Z': 0, 'N': 1, 'E': 2}
	zrtRank = map[byte]int{'Z': 0, 'R': 1, 'T': 2}
)

// SortZNE orders traces by component Z, N, E. Other components keep their
// relative order after the known ones.
func (s Stream) SortZNE() {
	s.sortByComponent(zneRank)
}

// SortZRT orders traces by component Z, R, T.
func (s Stream) SortZRT() {
	s.sortByComponent(zrtRank)
}

func (s Stream) sortByComponent(rank map[byte]int) {
	sort.SliceStable(s, func(i, j int) bool {
		return componentRank(s[i].Channel, rank) < componentRank(s[j].Channel, rank)
	})
}

// componentRank ranks a channel code by its last character (the SEED
// orientation code).
func componentRank(channel string, rank map[byte]int) int {
	channel = strings.ToUpper(strings.TrimSpace(channel))
	if channel == "" {
		return len(rank)
	}
	if r, ok := rank[channel[len(channel)-1]]; ok {
		return r
	}
	return len(rank)
}
