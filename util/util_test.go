package util

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestLogf(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	was := Logging
	defer func() { Logging = was }()

	Logging = false
	Logf("quiet %d", 1)
	if 0 < buf.Len() {
		t.Fatal(buf.String())
	}

	Logging = true
	Logf("loud %d", 2)
	if !strings.Contains(buf.String(), "loud 2") {
		t.Fatal(buf.String())
	}

	Logging = false
	Warnf("tisk %s", "tisk")
	if !strings.Contains(buf.String(), "warning: tisk tisk") {
		t.Fatal(buf.String())
	}
}
