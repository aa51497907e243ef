package util

import (
	"net"
	"testing"
)

func TestFormatPercent(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		0:       "0.00%",
		12.345:  "12.35%",
		100:     "100.00%",
		33.3333: "33.33%",
	}
	for in, want := range cases {
		if got := FormatPercent(in); got != want {
			t.Fatalf("FormatPercent(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		0:          "0.00",
		999.5:      "999.50",
		1000:       "1,000.00",
		1234567.89: "1,234,567.89",
		-45678.1:   "-45,678.10",
	}
	for in, want := range cases {
		if got := FormatCurrency(in); got != want {
			t.Fatalf("FormatCurrency(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestFindAvailablePort_SkipsBusyPort(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	defer ln.Close()

	busy := ln.Addr().(*net.TCPAddr).Port
	got := FindAvailablePort(busy)
	if got == busy {
		t.Fatalf("expected a different port than busy %d", busy)
	}
	if got < busy || got >= busy+20 {
		t.Fatalf("port %d out of search window", got)
	}
}
