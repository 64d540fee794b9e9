package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDebugLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	if err := SetupLogger(path); err != nil {
		t.Fatalf("SetupLogger failed: %v", err)
	}
	if !Enabled() {
		t.Fatalf("Logger should be enabled after setup")
	}

	DebugLog("phase %d", 18)
	LogWarning("slow crop %s", "a.png")
	LogTileClassified("a.png", "tile 8", nil)
	LogTileClassified("b.png", "", errors.New("insufficient color separation"))
	CloseLogger()

	if Enabled() {
		t.Errorf("Logger should be disabled after close")
	}
	DebugLog("dropped")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	log := string(data)
	for _, want := range []string{
		"Debug Log Started",
		"phase 18",
		"WARNING: slow crop a.png",
		"CLASSIFIED: a.png - tile 8",
		"FAILED: b.png - Error: insufficient color separation",
		"Debug Log Closed",
	} {
		if !strings.Contains(log, want) {
			t.Errorf("Log should contain %q", want)
		}
	}
	if strings.Contains(log, "dropped") {
		t.Errorf("Messages after close should not be written")
	}
}
