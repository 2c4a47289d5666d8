package output

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func writeScriptPlugin(t *testing.T, script string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "plugin.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return &Plugin{
		Manifest:   Manifest{Name: "test-plugin", Executable: "plugin.sh", Actions: []string{ActionSetVolume}},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{
			name:   "success",
			script: `cat >/dev/null; echo '{"success":true}'`,
		},
		{
			name:    "plugin reports failure",
			script:  `cat >/dev/null; echo '{"success":false,"error":"mixer busy"}'`,
			wantErr: "mixer busy",
		},
		{
			name:    "failure without message",
			script:  `cat >/dev/null; echo '{"success":false}'`,
			wantErr: "unknown error",
		},
		{
			name:    "invalid JSON",
			script:  `cat >/dev/null; echo 'not json'`,
			wantErr: "failed to parse plugin response",
		},
		{
			name:    "non-zero exit with stderr",
			script:  `cat >/dev/null; echo 'boom' >&2; exit 3`,
			wantErr: "stderr: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeScriptPlugin(t, tt.script)
			err := NewExecutor(5*time.Second).Execute(context.Background(), p, Request{Action: ActionSetVolume, Volume: 10})
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Execute() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Execute() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExecutor_Execute_SendsRequest(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "received.json")

	p := writeScriptPlugin(t, `cat > "$OUT"; echo '{"success":true}'`)
	t.Setenv("OUT", out)

	req := Request{Action: ActionSetVolume, Volume: 42, Gesture: "Pinch"}
	if err := NewExecutor(5*time.Second).Execute(context.Background(), p, req); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read received request: %v", err)
	}
	want := `{"action":"set-volume","volume":42,"gesture":"Pinch"}`
	if strings.TrimSpace(string(data)) != want {
		t.Errorf("plugin received %s, want %s", data, want)
	}
}

func TestExecutor_Execute_Timeout(t *testing.T) {
	p := writeScriptPlugin(t, `exec sleep 5`)

	start := time.Now()
	err := NewExecutor(100*time.Millisecond).Execute(context.Background(), p, Request{Action: ActionSetVolume})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Execute() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}

func TestExecutor_Execute_MissingExecutable(t *testing.T) {
	p := &Plugin{
		Manifest:   Manifest{Name: "missing"},
		Path:       t.TempDir(),
		Executable: filepath.Join(t.TempDir(), "nope"),
	}
	if err := NewExecutor(time.Second).Execute(context.Background(), p, Request{}); err == nil {
		t.Error("expected error for missing executable")
	}
}
