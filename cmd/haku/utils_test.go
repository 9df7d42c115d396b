package main

import "testing"

func TestParseIssueNumber(t *testing.T) {
	cases := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "12", want: 12},
		{raw: "#12", want: 12},
		{raw: " 3 ", want: 3},
		{raw: "0", want: 0},
		{raw: "-1", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := parseIssueNumber(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("parse %q = %d, want %d", tc.raw, got, tc.want)
			}
		})
	}
}

func TestMaskToken(t *testing.T) {
	if got := maskToken(""); got != "(not set)" {
		t.Fatalf("expected placeholder for empty token, got %q", got)
	}
	if got := maskToken("short"); got != "****" {
		t.Fatalf("expected short token fully masked, got %q", got)
	}
	got := maskToken("ghp_abcdefghijklmnop")
	if got != "ghp_…mnop" {
		t.Fatalf("unexpected mask %q", got)
	}
}
