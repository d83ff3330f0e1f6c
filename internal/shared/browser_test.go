package shared

import (
	"strings"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	tc := []struct {
		goos string
		bin  string
	}{
		{goos: "darwin", bin: "open"},
		{goos: "linux", bin: "xdg-open"},
		{goos: "windows", bin: "rundll32"},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, err := browserCommand(tt.goos, "http://localhost:3000")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.HasSuffix(cmd.Path, tt.bin) && cmd.Args[0] != tt.bin {
				t.Errorf("expected %s, got %v", tt.bin, cmd.Args)
			}
			if cmd.Args[len(cmd.Args)-1] != "http://localhost:3000" {
				t.Errorf("expected url as last argument, got %v", cmd.Args)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		if _, err := browserCommand("plan9", "http://localhost:3000"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})

	t.Run("OpenBrowser unsupported runtime", func(t *testing.T) {
		orig := getRuntime
		defer func() { getRuntime = orig }()
		getRuntime = func() string { return "plan9" }

		if err := OpenBrowser("http://localhost:3000"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})
}
