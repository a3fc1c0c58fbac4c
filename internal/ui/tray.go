// Package ui runs the optional system tray for the editor agent.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/framecast/editor-agent/internal/editor"
)

const refreshInterval = 2 * time.Second

type Tray struct {
	sessions *editor.Manager
	runner   *editor.Runner
	logger   *slog.Logger

	statusItem   *systray.MenuItem
	sessionsItem *systray.MenuItem
	pauseItem    *systray.MenuItem

	mu sync.Mutex

	onQuit func()
	stop   chan struct{}
}

type TrayConfig struct {
	Sessions *editor.Manager
	Runner   *editor.Runner
	Logger   *slog.Logger
	OnQuit   func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		sessions: cfg.Sessions,
		runner:   cfg.Runner,
		logger:   cfg.Logger,
		onQuit:   cfg.OnQuit,
		stop:     make(chan struct{}),
	}
}

// Run blocks until the tray exits. systray requires it on the main
// goroutine on macOS.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Framecast")
	systray.SetTooltip("Framecast Editor Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.sessionsItem = systray.AddMenuItem(sessionsTitle(nil), "Open editor sessions")
	t.sessionsItem.Disable()

	systray.AddSeparator()

	t.pauseItem = systray.AddMenuItem("Pause Autosave", "Stop saving open sessions in the background")
	saveItem := systray.AddMenuItem("Save All", "Save every session with unsaved edits")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Framecast Editor Agent")

	go t.refreshLoop()

	go func() {
		for {
			select {
			case <-t.pauseItem.ClickedCh:
				t.togglePause()
			case <-saveItem.ClickedCh:
				t.saveAll()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	close(t.stop)
	t.logger.Info("system tray exiting")
}

func (t *Tray) refreshLoop() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.refresh()
		}
	}
}

func (t *Tray) refresh() {
	if t.sessions == nil {
		return
	}
	list := t.sessions.List()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessionsItem.SetTitle(sessionsTitle(list))
	t.statusItem.SetTitle("Status: " + statusLabel(list, t.paused()))
}

func (t *Tray) paused() bool {
	return t.runner != nil && t.runner.IsPaused()
}

func (t *Tray) togglePause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runner == nil {
		return
	}

	if t.runner.IsPaused() {
		t.runner.Resume()
		t.pauseItem.SetTitle("Pause Autosave")
		t.statusItem.SetTitle("Status: Idle")
	} else {
		t.runner.Pause()
		t.pauseItem.SetTitle("Resume Autosave")
		t.statusItem.SetTitle("Status: Paused")
	}
}

func (t *Tray) saveAll() {
	if t.sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	saved, err := t.sessions.FlushDirty(ctx)
	if err != nil {
		t.logger.Error("save from tray failed", "error", err)
		return
	}
	t.logger.Info("saved sessions from tray", "count", saved)
	t.refresh()
}

func (t *Tray) Quit() {
	systray.Quit()
}

func sessionsTitle(list []editor.Session) string {
	dirty := 0
	for _, s := range list {
		if s.Dirty {
			dirty++
		}
	}
	if dirty == 0 {
		return fmt.Sprintf("Sessions: %d open", len(list))
	}
	return fmt.Sprintf("Sessions: %d open, %d unsaved", len(list), dirty)
}

func statusLabel(list []editor.Session, paused bool) string {
	switch {
	case paused:
		return "Paused"
	case len(list) > 0:
		return "Editing"
	default:
		return "Idle"
	}
}
