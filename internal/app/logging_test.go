package app

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]log.Level{
		"":        log.InfoLevel,
		" debug ": log.DebugLevel,
		" trace ": log.TraceLevel,
		"WARN":    log.WarnLevel,
		"error":   log.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseLogLevel_Invalid(t *testing.T) {
	got, err := ParseLogLevel("chatty")
	if err == nil {
		t.Fatal("expected error for invalid level")
	}
	if got != log.InfoLevel {
		t.Fatalf("expected info fallback, got %s", got)
	}
}

func TestSetupLogger(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	if err := SetupLogger("debug"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.GetLevel() != log.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}
	if err := SetupLogger("bogus"); err == nil {
		t.Fatal("expected error for invalid level")
	}
	if log.GetLevel() != log.InfoLevel {
		t.Fatalf("expected info level after invalid value, got %s", log.GetLevel())
	}
}
