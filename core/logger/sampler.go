package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// sampler lets through keep out of every window debug events, in arrival
// order. A zero window disables sampling and lets everything through.
type sampler struct {
	rate atomic.Uint64 // keep<<32 | window
	seen atomic.Uint64
}

func newSampler(spec string) *sampler {
	s := &sampler{}
	s.Reset(spec)
	return s
}

// Reset applies spec: "k/n" keeps k of n, "n" keeps 1 of n, "p%" keeps p of
// 100. "0", "off" and malformed specs disable sampling.
func (s *sampler) Reset(spec string) {
	keep, window := parseSample(spec)
	if d := gcd(keep, window); d > 1 {
		keep, window = keep/d, window/d
	}
	s.rate.Store(uint64(keep)<<32 | uint64(window))
	s.seen.Store(0)
}

func (s *sampler) Allow() bool {
	rate := s.rate.Load()
	keep, window := rate>>32, rate&0xffffffff
	if window == 0 {
		return true
	}
	n := (s.seen.Add(1) - 1) % window
	return n < keep
}

func parseSample(spec string) (keep, window uint32) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	atoi := func(s string) (uint32, bool) {
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
		return uint32(v), err == nil && v > 0
	}
	switch {
	case spec == "", spec == "off", spec == "0":
		return 0, 0
	case strings.HasSuffix(spec, "%"):
		p, ok := atoi(strings.TrimSuffix(spec, "%"))
		if !ok {
			return 0, 0
		}
		return min(p, 100), 100
	case strings.Contains(spec, "/"):
		k, w, _ := strings.Cut(spec, "/")
		kv, ok1 := atoi(k)
		wv, ok2 := atoi(w)
		if !ok1 || !ok2 {
			return 0, 0
		}
		return min(kv, wv), wv
	default:
		w, ok := atoi(spec)
		if !ok {
			return 0, 0
		}
		return 1, w
	}
}

func gcd(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
