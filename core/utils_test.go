package core

import "testing"

func TestCleanString(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		lower bool
		want  string
	}{
		{name: "trims whitespace", in: "  JDoe \t", want: "JDoe"},
		{name: "lowers on demand", in: " JDoe@Club.CD ", lower: true, want: "jdoe@club.cd"},
		{name: "empty", in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.lower {
				got = CleanString(tt.in, true)
			} else {
				got = CleanString(tt.in)
			}
			if got != tt.want {
				t.Errorf("CleanString(%q) = %q; want %q", tt.in, got, tt.want)
			}
		})
	}
}
