package shared

import (
	"errors"
	"os/exec"
	"testing"
)

func TestOpenBrowser(t *testing.T) {
	origRuntime, origStart := getRuntime, startCommand
	t.Cleanup(func() {
		getRuntime, startCommand = origRuntime, origStart
	})

	tt := []struct {
		name     string
		platform string
		wantBin  string
		startErr error
		wantErr  bool
	}{
		{name: "darwin", platform: "darwin", wantBin: "open"},
		{name: "linux", platform: "linux", wantBin: "xdg-open"},
		{name: "windows", platform: "windows", wantBin: "rundll32"},
		{name: "unsupported", platform: "plan9", wantErr: true},
		{name: "start failure", platform: "linux", wantBin: "xdg-open", startErr: errors.New("boom"), wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var started *exec.Cmd
			getRuntime = func() string { return tc.platform }
			startCommand = func(cmd *exec.Cmd) error {
				started = cmd
				return tc.startErr
			}

			err := OpenBrowser("https://accounts.spotify.com/authorize")
			if (err != nil) != tc.wantErr {
				t.Fatalf("OpenBrowser() error = %v, wantErr %v", err, tc.wantErr)
			}

			if tc.wantBin == "" {
				if started != nil {
					t.Error("expected no command to start")
				}
				return
			}
			if started == nil || started.Args[0] != tc.wantBin {
				t.Fatalf("expected %s to be started, got %v", tc.wantBin, started)
			}
			if last := started.Args[len(started.Args)-1]; last != "https://accounts.spotify.com/authorize" {
				t.Errorf("expected URL as last argument, got %s", last)
			}
		})
	}
}
