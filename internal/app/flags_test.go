package app

import (
	"io"
	"testing"
)

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags(CommandServe, []string{"-c", "app.yaml", "--port", "9090", "--seed=seed.yaml"}, io.Discard)
	if err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if f.ConfigPath != "app.yaml" {
		t.Errorf("ConfigPath = %q, want %q", f.ConfigPath, "app.yaml")
	}
	if f.Port != "9090" {
		t.Errorf("Port = %q, want %q", f.Port, "9090")
	}
	if f.SeedFile != "seed.yaml" {
		t.Errorf("SeedFile = %q, want %q", f.SeedFile, "seed.yaml")
	}
}

func TestParseFlags_Empty(t *testing.T) {
	f, err := ParseFlags(CommandServe, nil, io.Discard)
	if err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if f != (Flags{}) {
		t.Errorf("ParseFlags(nil) = %+v, want zero value", f)
	}
}

func TestParseFlags_UnknownFlag(t *testing.T) {
	if _, err := ParseFlags(CommandServe, []string{"--database-url", "x"}, io.Discard); err == nil {
		t.Error("ParseFlags() error = nil, want error for unknown flag")
	}
}
