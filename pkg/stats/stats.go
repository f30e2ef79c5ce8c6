// Package stats accumulates counts for a capture session.
package stats

import (
	"sort"
	"sync"
	"time"
)

// Stroke is one key transition fed into a Session.
type Stroke struct {
	VirtualKey uint32
	Pressed    bool
	Blocked    bool
	Injected   bool
	Time       time.Time
}

// KeyCount is how often a key was pressed.
type KeyCount struct {
	VirtualKey uint32
	Count      int64
}

type Summary struct {
	Pressed       int64
	Released      int64
	Blocked       int64
	Injected      int64
	Distance      float64
	PerMinute     float64
	PeakHour      int
	PeakHourCount int64
	TopKeys       []KeyCount
	Elapsed       time.Duration
}

// Session is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	start    time.Time
	pressed  int64
	released int64
	blocked  int64
	injected int64
	distance float64
	hourly   [24]int64
	perKey   map[uint32]int64
}

// NewSession starts a session at start.
func NewSession(start time.Time) *Session {
	return &Session{start: start, perKey: make(map[uint32]int64)}
}

// RecordKey counts one key transition. Only presses count toward the
// per-key and hourly totals.
func (s *Session) RecordKey(st Stroke) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.Blocked {
		s.blocked++
	}
	if st.Injected {
		s.injected++
	}
	if !st.Pressed {
		s.released++
		return
	}
	s.pressed++
	s.perKey[st.VirtualKey]++
	s.hourly[st.Time.Hour()]++
}

// RecordMove adds pointer travel in pixels.
func (s *Session) RecordMove(distance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.distance += distance
}

// Reset clears every counter and restarts the session at start.
func (s *Session) Reset(start time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start = start
	s.pressed, s.released, s.blocked, s.injected = 0, 0, 0, 0
	s.distance = 0
	s.hourly = [24]int64{}
	s.perKey = make(map[uint32]int64)
}

// Summary snapshots the session as of now, with at most topN keys.
func (s *Session) Summary(now time.Time, topN int) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		Pressed:  s.pressed,
		Released: s.released,
		Blocked:  s.blocked,
		Injected: s.injected,
		Distance: s.distance,
		Elapsed:  now.Sub(s.start),
		TopKeys:  TopKeys(s.perKey, topN),
	}
	sum.PeakHour, sum.PeakHourCount = FindPeakHour(s.hourly[:])
	if minutes := sum.Elapsed.Minutes(); minutes > 0 {
		sum.PerMinute = float64(s.pressed) / minutes
	}
	return sum
}

// TopKeys returns the n most pressed keys, most frequent first. Ties are
// broken by virtual key code.
func TopKeys(counts map[uint32]int64, n int) []KeyCount {
	if n <= 0 || len(counts) == 0 {
		return nil
	}
	out := make([]KeyCount, 0, len(counts))
	for vk, c := range counts {
		out = append(out, KeyCount{VirtualKey: vk, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].VirtualKey < out[j].VirtualKey
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func FindPeakHour(hourlyData []int64) (hour int, count int64) {
	for h, c := range hourlyData {
		if c > count {
			hour = h
			count = c
		}
	}
	return
}

func FormatCount(count int64) string {
	if count >= 1000000 {
		return formatFloat(float64(count)/1000000) + "M"
	}
	if count >= 1000 {
		return formatFloat(float64(count)/1000) + "K"
	}
	return formatInt(count)
}

func formatFloat(f float64) string {
	intPart := int64(f)
	if f == float64(intPart) {
		return formatInt(intPart)
	}
	// Get first decimal digit
	decimalPart := int((f - float64(intPart)) * 10)
	return formatInt(intPart) + "." + string(byte('0'+decimalPart))
}

func formatInt(i int64) string {
	if i == 0 {
		return "0"
	}
	var result []byte
	for i > 0 {
		result = append([]byte{byte('0' + i%10)}, result...)
		i /= 10
	}
	return string(result)
}
