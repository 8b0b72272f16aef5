package logger

import "testing"

func TestSamplerSpecs(t *testing.T) {
	cases := []struct {
		spec   string
		allows int
	}{
		{"1/4", 2},
		{"4", 2},
		{"25%", 2},
		{"3/4", 6},
		{"off", 8},
		{"garbage", 8},
		{"5/2", 8},
	}
	for _, tc := range cases {
		s := newSampler(tc.spec)
		got := 0
		for i := 0; i < 8; i++ {
			if s.Allow() {
				got++
			}
		}
		if got != tc.allows {
			t.Errorf("spec %q allowed %d of 8, want %d", tc.spec, got, tc.allows)
		}
	}
}

func TestPreview(t *testing.T) {
	got, rest := Preview([]string{"a", "b", "c"}, 2)
	if got != "a, b" || rest != 1 {
		t.Fatalf("Preview = %q, %d", got, rest)
	}
	if got, rest := Preview([]string{"a"}, 5); got != "a" || rest != 0 {
		t.Fatalf("Preview = %q, %d", got, rest)
	}
}
