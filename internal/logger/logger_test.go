package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetLevel("info")

	SetLevel("info")
	Debugf("hidden %d", 1)
	Infof("shown %d", 2)
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug line leaked at info level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown 2") {
		t.Fatalf("info line missing: %q", buf.String())
	}

	SetLevel("debug")
	Debugf("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug line missing at debug level: %q", buf.String())
	}
}
