package main

import (
	"testing"

	"github.com/giantswarm/gotestr/cmd"
)

func TestVersionDefault(t *testing.T) {
	if version != "dev" {
		t.Errorf("expected default version to be 'dev', got %s", version)
	}
}

func TestSetVersionRoundTrip(t *testing.T) {
	original := version
	defer func() { version = original }()

	for _, v := range []string{"1.2.3", "v2.0.0-rc1", "dev"} {
		version = v
		cmd.SetVersion(version)
		if got := cmd.GetVersion(); got != v {
			t.Errorf("expected GetVersion() to return %s, got %s", v, got)
		}
	}
}
