// Package editor keeps the open editing sessions. Each session owns a
// timeline state, a shell state and the last known player sandbox; every
// operation computes the next snapshot with the pure timeline and shell
// packages and swaps it in under the manager lock.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/framecast/editor-agent/internal/logging"
	"github.com/framecast/editor-agent/internal/playback"
	"github.com/framecast/editor-agent/internal/project"
	"github.com/framecast/editor-agent/internal/shell"
	"github.com/framecast/editor-agent/internal/timeline"
)

var ErrSessionNotFound = errors.New("session not found")

// Store loads and persists projects.
type Store interface {
	LoadProject(ctx context.Context, id string) (*project.Project, error)
	SaveProject(ctx context.Context, p *project.Project) (*project.Project, error)
}

// Session is a snapshot of one open project. Values handed out by the
// Manager are copies; the scene slices are never mutated in place.
type Session struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"project_id"`
	Title     string         `json:"title"`
	Timeline  timeline.State `json:"timeline"`
	Shell     shell.State    `json:"shell"`
	Sandbox   shell.Sandbox  `json:"sandbox"`
	Dirty     bool           `json:"dirty"`
	Revision  int64          `json:"revision"`
	OpenedAt  time.Time      `json:"opened_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SnapSettings are the defaults used by Manager.Snap.
type SnapSettings struct {
	Step      float64
	Threshold float64
}

type Manager struct {
	store  Store
	snap   SnapSettings
	logger *slog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	sessions  map[string]Session
	byProject map[string]string
}

func NewManager(store Store, snap SnapSettings, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	if snap.Step == 0 {
		snap.Step = timeline.DefaultSnapStep
	}
	if snap.Threshold == 0 {
		snap.Threshold = timeline.DefaultSnapThreshold
	}
	return &Manager{
		store:     store,
		snap:      snap,
		logger:    logging.WithComponent(logger, "editor"),
		now:       time.Now,
		sessions:  make(map[string]Session),
		byProject: make(map[string]string),
	}
}

// Open returns the session editing projectID, loading the project when no
// session is open for it yet.
func (m *Manager) Open(ctx context.Context, projectID string) (Session, error) {
	m.mu.RLock()
	if id, ok := m.byProject[projectID]; ok {
		s := m.sessions[id]
		m.mu.RUnlock()
		return s, nil
	}
	m.mu.RUnlock()

	p, err := m.store.LoadProject(ctx, projectID)
	if err != nil {
		return Session{}, err
	}

	state := p.Timeline()
	now := m.now()
	s := Session{
		ID:        project.NewID(),
		ProjectID: p.ID,
		Title:     p.Title,
		Timeline:  state,
		Shell:     shell.NewState().WithPlayhead(state.Playhead).SelectScene(state.SelectedSceneID),
		Sandbox:   shell.Sandbox{Mode: shell.ModeEdit, Time: state.Playhead},
		OpenedAt:  now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have opened the project while we were loading.
	if id, ok := m.byProject[projectID]; ok {
		return m.sessions[id], nil
	}
	m.sessions[s.ID] = s
	m.byProject[s.ProjectID] = s.ID

	logging.WithSessionID(logging.WithProjectID(m.logger, s.ProjectID), s.ID).
		Info("session opened", "scenes", len(state.Scenes))
	return s, nil
}

func (m *Manager) Get(id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

// List returns the open sessions, oldest first.
func (m *Manager) List() []Session {
	m.mu.RLock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].OpenedAt.Before(out[j].OpenedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close saves a dirty session and forgets it.
func (m *Manager) Close(ctx context.Context, id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	if s.Dirty {
		if err := m.save(ctx, s); err != nil {
			return err
		}
	}

	m.mu.Lock()
	delete(m.sessions, id)
	if m.byProject[s.ProjectID] == id {
		delete(m.byProject, s.ProjectID)
	}
	m.mu.Unlock()

	logging.WithSessionID(m.logger, id).Info("session closed")
	return nil
}

// Discard drops the session editing projectID without saving it. It
// reports whether one was open.
func (m *Manager) Discard(projectID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byProject[projectID]
	if !ok {
		return false
	}
	delete(m.byProject, projectID)
	delete(m.sessions, id)
	return true
}

// Dispatch applies a timeline action. The shell follows the timeline's
// playhead and, when it changes, its scene selection.
func (m *Manager) Dispatch(id string, action timeline.Action) (Session, error) {
	return m.update(id, func(s Session) Session {
		return applyTimeline(s, timeline.Reduce(s.Timeline, action))
	})
}

// SwitchTab activates a tab and reconciles the player sandbox with it. The
// returned patch is what the player must apply; when UpdatePlayerTime is
// set the player has to seek to Time.
func (m *Manager) SwitchTab(id string, tab shell.Tab) (Session, shell.SandboxPatch, error) {
	var patch shell.SandboxPatch
	s, err := m.update(id, func(s Session) Session {
		s.Shell = s.Shell.WithActiveTab(tab)
		patch = shell.NextSandboxPatch(shell.PatchInput{
			ActiveTab:   s.Shell.ActiveTab,
			CurrentMode: s.Sandbox.Mode,
			CurrentTime: s.Sandbox.Time,
			Playhead:    s.Timeline.Playhead,
		})
		s.Sandbox = patch.Apply(s.Sandbox)
		return s
	})
	if err != nil {
		return Session{}, shell.SandboxPatch{}, err
	}
	return s, patch, nil
}

// ReportPlayerTime records the player's current time. The timeline
// playhead only follows when the two differ by more than the sync
// epsilon, which keeps the player and timeline from chasing each other.
func (m *Manager) ReportPlayerTime(id string, currentTime float64) (Session, error) {
	return m.update(id, func(s Session) Session {
		if shell.ShouldSyncPlayhead(currentTime, s.Timeline.Playhead) {
			s = applyTimeline(s, timeline.Reduce(s.Timeline, timeline.SetPlayheadAction{Playhead: currentTime}))
		}
		s.Sandbox.Time = shell.ClampPlayhead(currentTime)
		s.Sandbox.UpdatePlayerTime = false
		return s
	})
}

// UpdateSelection merges a partial selection. A scene id that is present
// (set or null) is also sent to the timeline, whose resolved selection
// then wins for the scene level.
func (m *Manager) UpdateSelection(id string, update shell.SelectionUpdate) (Session, error) {
	return m.update(id, func(s Session) Session {
		s.Shell = s.Shell.WithSelection(update)
		if update.SceneID.IsOmitted() {
			return s
		}
		next := timeline.Reduce(s.Timeline, timeline.SelectSceneAction{SceneID: update.SceneID})
		s.Dirty = s.Dirty || persistedChanged(s.Timeline, next)
		s.Timeline = next
		s.Shell.Selection.SceneID = next.SelectedSceneID
		return s
	})
}

// Snap snaps value onto the session's timeline with the manager defaults,
// overridable by opts.
func (m *Manager) Snap(id string, value float64, opts ...timeline.SnapOption) (float64, error) {
	s, err := m.Get(id)
	if err != nil {
		return 0, err
	}
	all := append([]timeline.SnapOption{
		timeline.WithStep(m.snap.Step),
		timeline.WithThreshold(m.snap.Threshold),
	}, opts...)
	return timeline.SnapToTimeline(value, s.Timeline.Scenes, all...), nil
}

// Cue maps timeline time t to source media.
func (m *Manager) Cue(id string, t float64) (playback.Cue, bool, error) {
	s, err := m.Get(id)
	if err != nil {
		return playback.Cue{}, false, err
	}
	cue, ok := playback.Locate(s.Timeline, t)
	return cue, ok, nil
}

// FlushDirty saves every dirty session and returns how many were saved.
func (m *Manager) FlushDirty(ctx context.Context) (int, error) {
	m.mu.RLock()
	var dirty []Session
	for _, s := range m.sessions {
		if s.Dirty {
			dirty = append(dirty, s)
		}
	}
	m.mu.RUnlock()

	saved := 0
	var errs []error
	for _, s := range dirty {
		if err := m.save(ctx, s); err != nil {
			errs = append(errs, err)
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}

// save persists s and clears the dirty flag unless the session changed
// again while saving.
func (m *Manager) save(ctx context.Context, s Session) error {
	p, err := m.store.LoadProject(ctx, s.ProjectID)
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	p.ApplyTimeline(s.Timeline)
	if _, err := m.store.SaveProject(ctx, p); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}

	m.mu.Lock()
	if cur, ok := m.sessions[s.ID]; ok && cur.Revision == s.Revision {
		cur.Dirty = false
		m.sessions[s.ID] = cur
	}
	m.mu.Unlock()

	m.logger.Debug("session saved", "session_id", s.ID, "revision", s.Revision)
	return nil
}

// update replaces a session with fn's result as one assignment.
func (m *Manager) update(id string, fn func(Session) Session) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	next := fn(s)
	next.Revision = s.Revision + 1
	next.UpdatedAt = m.now()
	m.sessions[id] = next
	return next, nil
}

func applyTimeline(s Session, next timeline.State) Session {
	if next.SelectedSceneID != s.Timeline.SelectedSceneID {
		s.Shell = s.Shell.SelectScene(next.SelectedSceneID)
	}
	s.Shell = s.Shell.WithPlayhead(next.Playhead)
	s.Dirty = s.Dirty || persistedChanged(s.Timeline, next)
	s.Timeline = next
	return s
}

func persistedChanged(prev, next timeline.State) bool {
	return prev.Playhead != next.Playhead ||
		prev.SelectedSceneID != next.SelectedSceneID ||
		!reflect.DeepEqual(prev.Scenes, next.Scenes)
}
