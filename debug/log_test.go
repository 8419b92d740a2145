package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWritesCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("enable: %v", err)
	}
	defer Disable()

	Log("touch", "bound %d to %s", 7, "Q")
	for i := 0; i < 4; i++ {
		LogEvery(2, "synth", "tick")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "bound 7 to Q") || !strings.Contains(out, "cat=touch") {
		t.Fatalf("expected touch entry in log, got:\n%s", out)
	}
	if got := strings.Count(out, "cat=synth"); got != 2 {
		t.Fatalf("expected 2 sampled synth entries, got %d", got)
	}
}

func TestLogDisabledIsNoop(t *testing.T) {
	Disable()
	if Enabled() {
		t.Fatalf("expected disabled")
	}
	Log("x", "nothing %d", 1)
}
