// Package tray provides a system tray menu for controlling the pinch volume session.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/pinchvol/internal/session"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(running bool)
	onOpen   func()
	onQuit   func()
	running  bool
	status   string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a new Tray reflecting the given running state.
func New(running bool) *Tray {
	return &Tray{
		running: running,
		status:  statusTitle(session.Snapshot{Running: running}),
	}
}

// OnToggle sets the callback invoked with the requested state when
// Start/Pause is clicked.
func (t *Tray) OnToggle(fn func(running bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback invoked when the dashboard menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit closes the tray from outside the menu, e.g. on a signal.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("PinchVol")
	systray.SetTooltip("Pinch gesture volume control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.running), "Start or pause gesture control")
	systray.AddSeparator()
	t.menuStatus = systray.AddMenuItem(t.status, "Current gesture and volume")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit PinchVol")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// handleToggle asks for the opposite of the current state. The menu itself is
// refreshed by the SetStatus call the session change triggers.
func (t *Tray) handleToggle() {
	t.mu.RLock()
	want := !t.running
	callback := t.onToggle
	t.mu.RUnlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(want)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStatus refreshes the menu from a session snapshot. It is safe to register
// as a session listener; menu items are only touched when their text changes.
func (t *Tray) SetStatus(snap session.Snapshot) {
	status := statusTitle(snap)

	t.mu.Lock()
	defer t.mu.Unlock()

	if snap.Running != t.running {
		t.running = snap.Running
		if t.menuToggle != nil {
			t.menuToggle.SetTitle(toggleTitle(t.running))
		}
	}
	if status != t.status {
		t.status = status
		if t.menuStatus != nil {
			t.menuStatus.SetTitle(status)
		}
	}
}

// Running returns the last known running state.
func (t *Tray) Running() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

// Status returns the current status line.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func toggleTitle(running bool) string {
	if running {
		return "❚❚ Pause"
	}
	return "▶ Start"
}

func statusTitle(snap session.Snapshot) string {
	if !snap.Running {
		return fmt.Sprintf("Paused · Volume %d%%", snap.Volume)
	}
	return fmt.Sprintf("%s · Volume %d%%", snap.Gesture, snap.Volume)
}
