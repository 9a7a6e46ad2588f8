package version

import (
	"strings"
	"testing"
)

func TestInfoMatchesGetters(t *testing.T) {
	v, c, d := Info()

	if v == "" || c == "" || d == "" {
		t.Fatalf("Info() returned empty fields: %q %q %q", v, c, d)
	}
	if v != GetVersion() {
		t.Errorf("GetVersion() = %q, Info version = %q", GetVersion(), v)
	}
	if c != GetCommit() {
		t.Errorf("GetCommit() = %q, Info commit = %q", GetCommit(), c)
	}
	if d != GetDate() {
		t.Errorf("GetDate() = %q, Info date = %q", GetDate(), d)
	}
}

func TestString(t *testing.T) {
	s := String()

	for _, part := range []string{"version=", "commit=", "date="} {
		if !strings.Contains(s, part) {
			t.Errorf("String() = %q, missing %q", s, part)
		}
	}
}
