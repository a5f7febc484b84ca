package backpressure

import "testing"

func TestLevelGrading(t *testing.T) {
	cases := []struct {
		ratio float64
		want  Level
	}{
		{0.10, LevelNone},
		{0.65, LevelLow},
		{0.80, LevelMedium},
		{0.92, LevelHigh},
		{0.97, LevelCritical},
	}
	for _, c := range cases {
		s := &Sampler{ratio: c.ratio}
		if got := s.Level(); got != c.want {
			t.Errorf("ratio=%.2f: expected %v, got %v", c.ratio, c.want, got)
		}
	}
}

func TestLevelStringRoundTrip(t *testing.T) {
	want := map[Level]string{
		LevelNone:     "none",
		LevelLow:      "low",
		LevelMedium:   "medium",
		LevelHigh:     "high",
		LevelCritical: "critical",
	}
	for lvl, str := range want {
		if lvl.String() != str {
			t.Errorf("expected %v.String() == %q, got %q", lvl, str, lvl.String())
		}
	}
}
