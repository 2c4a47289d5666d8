// Package main is an output plugin that sets the system output volume.
// Build it into its own directory next to plugin.json:
//
//	go build -o plugins/system-volume/system-volume ./plugins/system-volume
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Request is the input from the plugin executor.
type Request struct {
	Action  string `json:"action"`
	Volume  int    `json:"volume"`
	Gesture string `json:"gesture"`
}

// Response is the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	if req.Action != "set-volume" {
		writeResponse(fmt.Errorf("unknown action: %s", req.Action))
		return
	}
	if req.Volume < 0 || req.Volume > 100 {
		writeResponse(fmt.Errorf("volume %d out of range 0-100", req.Volume))
		return
	}

	writeResponse(setVolume(req.Volume))
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func setVolume(volume int) error {
	switch runtime.GOOS {
	case "darwin":
		return run("osascript", "-e", fmt.Sprintf("set volume output volume %d", volume))
	case "linux":
		pct := strconv.Itoa(volume) + "%"
		if _, err := exec.LookPath("pactl"); err == nil {
			return run("pactl", "set-sink-volume", "@DEFAULT_SINK@", pct)
		}
		if _, err := exec.LookPath("amixer"); err == nil {
			return run("amixer", "-q", "sset", "Master", pct)
		}
		return errors.New("neither pactl nor amixer found")
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
}

func run(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, output)
	}
	return nil
}
