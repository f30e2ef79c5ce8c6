package stats

import (
	"testing"
	"time"
)

var sessionStart = time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)

func TestSessionSummary(t *testing.T) {
	s := NewSession(sessionStart)
	at := sessionStart.Add(10 * time.Second)

	strokes := []Stroke{
		{VirtualKey: 0x41, Pressed: true, Time: at},
		{VirtualKey: 0x41, Time: at},
		{VirtualKey: 0x41, Pressed: true, Time: at},
		{VirtualKey: 0x41, Time: at},
		{VirtualKey: 0x1B, Pressed: true, Blocked: true, Time: at},
		{VirtualKey: 0x1B, Blocked: true, Time: at},
		{VirtualKey: 0x42, Pressed: true, Injected: true, Time: at.Add(time.Hour)},
	}
	for _, st := range strokes {
		s.RecordKey(st)
	}
	s.RecordMove(5)
	s.RecordMove(10)

	sum := s.Summary(sessionStart.Add(2*time.Minute), 2)

	if sum.Pressed != 4 || sum.Released != 3 {
		t.Errorf("Pressed/Released = %d/%d, want 4/3", sum.Pressed, sum.Released)
	}
	if sum.Blocked != 2 || sum.Injected != 1 {
		t.Errorf("Blocked/Injected = %d/%d, want 2/1", sum.Blocked, sum.Injected)
	}
	if sum.Distance != 15 {
		t.Errorf("Distance = %v, want 15", sum.Distance)
	}
	if sum.PerMinute != 2 {
		t.Errorf("PerMinute = %v, want 2", sum.PerMinute)
	}
	if sum.PeakHour != 14 || sum.PeakHourCount != 3 {
		t.Errorf("peak = (%d, %d), want (14, 3)", sum.PeakHour, sum.PeakHourCount)
	}
	want := []KeyCount{{VirtualKey: 0x41, Count: 2}, {VirtualKey: 0x1B, Count: 1}}
	if len(sum.TopKeys) != len(want) {
		t.Fatalf("TopKeys = %+v, want %+v", sum.TopKeys, want)
	}
	for i := range want {
		if sum.TopKeys[i] != want[i] {
			t.Errorf("TopKeys[%d] = %+v, want %+v", i, sum.TopKeys[i], want[i])
		}
	}
}

func TestSessionReset(t *testing.T) {
	s := NewSession(sessionStart)
	s.RecordKey(Stroke{VirtualKey: 0x41, Pressed: true, Time: sessionStart})
	s.RecordMove(3)

	later := sessionStart.Add(time.Hour)
	s.Reset(later)
	sum := s.Summary(later, 5)

	if sum.Pressed != 0 || sum.Distance != 0 || len(sum.TopKeys) != 0 {
		t.Errorf("Summary after Reset = %+v, want zero counts", sum)
	}
	if sum.Elapsed != 0 || sum.PerMinute != 0 {
		t.Errorf("Elapsed/PerMinute = %v/%v, want 0/0", sum.Elapsed, sum.PerMinute)
	}
	s.RecordKey(Stroke{VirtualKey: 0x41, Pressed: true, Time: later})
	if got := s.Summary(later, 5).Pressed; got != 1 {
		t.Errorf("Pressed after Reset and one stroke = %d, want 1", got)
	}
}

func TestTopKeys(t *testing.T) {
	counts := map[uint32]int64{0x41: 5, 0x42: 9, 0x43: 5, 0x44: 1}

	tests := []struct {
		name string
		n    int
		want []KeyCount
	}{
		{"zero", 0, nil},
		{"top one", 1, []KeyCount{{0x42, 9}}},
		{"ties by code", 3, []KeyCount{{0x42, 9}, {0x41, 5}, {0x43, 5}}},
		{"more than available", 10, []KeyCount{{0x42, 9}, {0x41, 5}, {0x43, 5}, {0x44, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopKeys(counts, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("TopKeys(%d) = %+v, want %+v", tt.n, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("TopKeys(%d)[%d] = %+v, want %+v", tt.n, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFindPeakHour(t *testing.T) {
	tests := []struct {
		name          string
		hourlyData    []int64
		expectedHour  int
		expectedCount int64
	}{
		{
			name:          "empty data",
			hourlyData:    []int64{},
			expectedHour:  0,
			expectedCount: 0,
		},
		{
			name:          "single hour",
			hourlyData:    []int64{100},
			expectedHour:  0,
			expectedCount: 100,
		},
		{
			name:          "peak at midnight",
			hourlyData:    []int64{500, 100, 200, 300},
			expectedHour:  0,
			expectedCount: 500,
		},
		{
			name:          "peak in afternoon",
			hourlyData:    make24HoursWithPeakAt(14, 1500),
			expectedHour:  14,
			expectedCount: 1500,
		},
		{
			name:          "all zeros",
			hourlyData:    make([]int64, 24),
			expectedHour:  0,
			expectedCount: 0,
		},
		{
			name:          "equal values",
			hourlyData:    []int64{100, 100, 100, 100},
			expectedHour:  0, // First occurrence wins
			expectedCount: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, count := FindPeakHour(tt.hourlyData)
			if hour != tt.expectedHour || count != tt.expectedCount {
				t.Errorf("FindPeakHour() = (%v, %v), want (%v, %v)", hour, count, tt.expectedHour, tt.expectedCount)
			}
		})
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		name     string
		count    int64
		expected string
	}{
		{"zero", 0, "0"},
		{"single digit", 5, "5"},
		{"double digit", 42, "42"},
		{"triple digit", 999, "999"},
		{"just under 1K", 999, "999"},
		{"exactly 1K", 1000, "1K"},
		{"1.5K", 1500, "1.5K"},
		{"10K", 10000, "10K"},
		{"100K", 100000, "100K"},
		{"just under 1M", 999999, "999.9K"},
		{"exactly 1M", 1000000, "1M"},
		{"1.5M", 1500000, "1.5M"},
		{"10M", 10000000, "10M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatCount(tt.count)
			if result != tt.expected {
				t.Errorf("FormatCount(%d) = %q, want %q", tt.count, result, tt.expected)
			}
		})
	}
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{1, "1"},
		{10, "10"},
		{100, "100"},
		{1234, "1234"},
		{1000000, "1000000"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := formatInt(tt.input)
			if result != tt.expected {
				t.Errorf("formatInt(%d) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// Helper function to create 24-hour data with a peak at specific hour
func make24HoursWithPeakAt(peakHour int, peakValue int64) []int64 {
	data := make([]int64, 24)
	for i := range data {
		data[i] = 100 // baseline
	}
	data[peakHour] = peakValue
	return data
}
