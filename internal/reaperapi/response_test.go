package reaperapi

import (
	"errors"
	"testing"
)

func TestParseExtState(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected ExtState
	}{
		{
			name:     "value present",
			body:     "EXTSTATE\tSongs\tabc.0\t{\"id\":\"abc\"}\n",
			expected: ExtState{Kind: "EXTSTATE", Section: "Songs", Key: "abc.0", Value: `{"id":"abc"}`},
		},
		{
			name:     "empty value",
			body:     "EXTSTATE\tSongs\tabc.0\t\n",
			expected: ExtState{Kind: "EXTSTATE", Section: "Songs", Key: "abc.0"},
		},
		{
			name:     "short-circuited reply",
			body:     "EXTSTATE\tSongs\tabc.0\n",
			expected: ExtState{Kind: "EXTSTATE", Section: "Songs", Key: "abc.0"},
		},
		{
			name:     "escaped value",
			body:     "EXTSTATE\tS\tk\tline\\none\\ttab\\\\slash\n",
			expected: ExtState{Kind: "EXTSTATE", Section: "S", Key: "k", Value: "line\none\ttab\\slash"},
		},
		{
			name:     "leading blank lines",
			body:     "\n\r\nEXTSTATE\tS\tk\tv\r\n",
			expected: ExtState{Kind: "EXTSTATE", Section: "S", Key: "k", Value: "v"},
		},
		{
			name: "empty body",
			body: "",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseExtState(tc.body)
			if err != nil {
				t.Fatalf("ParseExtState returned error: %v", err)
			}
			if got != tc.expected {
				t.Fatalf("ParseExtState mismatch: expected %#v, got %#v", tc.expected, got)
			}
		})
	}
}

func TestParseExtStateWrongKind(t *testing.T) {
	_, err := ParseExtState("TRANSPORT\t0\t1.5\t0\t0:01.500\t1.1.50\n")
	if !errors.Is(err, ErrUnexpectedKind) {
		t.Fatalf("expected ErrUnexpectedKind, got %v", err)
	}
}

func TestParseTransport(t *testing.T) {
	got, err := ParseTransport("TRANSPORT\t1\t183.25\t1\t3:03.250\t92.1.00\n")
	if err != nil {
		t.Fatalf("ParseTransport: %v", err)
	}
	want := Transport{
		Kind:           "TRANSPORT",
		PlayState:      1,
		Position:       183.25,
		Repeat:         true,
		PositionString: "3:03.250",
		PositionBeats:  "92.1.00",
	}
	if got != want {
		t.Fatalf("ParseTransport mismatch: expected %#v, got %#v", want, got)
	}

	if _, err := ParseTransport("TRANSPORT\tx\t1\n"); err == nil {
		t.Fatalf("expected error for non-numeric play state")
	}
	if _, err := ParseTransport(""); !errors.Is(err, ErrUnexpectedKind) {
		t.Fatalf("expected ErrUnexpectedKind for empty reply, got %v", err)
	}
}

func TestLines(t *testing.T) {
	got := Lines("a\n\nb\r\n  \nc")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("Lines returned %q", got)
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	for _, v := range []string{"", "plain", `a\b`, "tab\there", "nl\nthere", `\n literal`, "mixed\\\t\n"} {
		if got := UnescapeValue(EscapeValue(v)); got != v {
			t.Fatalf("round trip of %q gave %q", v, got)
		}
	}
}

func TestDecodeRejectsNonPointer(t *testing.T) {
	if err := Decode("a\tb", ExtState{}); err == nil {
		t.Fatalf("expected error for non-pointer target")
	}
}
