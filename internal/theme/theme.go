// Package theme owns the UI theme preference: the active theme, the last
// detected operating-system preference, and user-defined custom themes.
package theme

import (
	"context"
	"strings"
	"sync"

	"github.com/iliyamo/property-listing/internal/bridge"
)

// Built-in themes.
const (
	Light = "light"
	Dark  = "dark"
)

// CustomTheme is a named theme with an opaque configuration blob.
type CustomTheme struct {
	Name   string         `json:"name" yaml:"name"`
	Config map[string]any `json:"config,omitempty" yaml:"config"`
}

// State is the read model of the theme slice.
type State struct {
	CurrentTheme     string        `json:"currentTheme"`
	SystemPreference string        `json:"systemPreference"`
	AvailableThemes  []string      `json:"availableThemes"`
	CustomThemes     []CustomTheme `json:"customThemes"`
}

// Slice holds the theme state.  Every change to the active theme or to
// the custom theme list is written through to the bridge.
type Slice struct {
	mu     sync.Mutex
	state  State
	bridge *bridge.Bridge
}

// New returns a slice on the light theme with a light system preference.
func New(b *bridge.Bridge) *Slice {
	return &Slice{
		bridge: b,
		state: State{
			CurrentTheme:     Light,
			SystemPreference: Light,
			AvailableThemes:  []string{Light, Dark},
			CustomThemes:     []CustomTheme{},
		},
	}
}

// Init restores custom themes and the active theme.  Without a stored
// choice the system preference applies; a stored theme that no longer
// exists falls back to light.
func (s *Slice) Init(ctx context.Context) {
	customs := bridge.Load[CustomTheme](ctx, s.bridge, bridge.KeyCustomThemes)
	stored := bridge.LoadValue(ctx, s.bridge, bridge.KeyTheme, "")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CustomThemes = customs
	s.rebuildAvailableLocked()
	switch {
	case stored == "":
		s.state.CurrentTheme = s.state.SystemPreference
	case s.availableLocked(stored):
		s.state.CurrentTheme = stored
	default:
		s.state.CurrentTheme = Light
	}
}

// State returns a copy of the theme state.
func (s *Slice) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.AvailableThemes = append([]string(nil), s.state.AvailableThemes...)
	out.CustomThemes = append([]CustomTheme(nil), s.state.CustomThemes...)
	return out
}

// SetTheme activates name.  A theme outside the available set is ignored
// and reported as false.
func (s *Slice) SetTheme(ctx context.Context, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.availableLocked(name) {
		return false
	}
	s.setCurrentLocked(ctx, name)
	return true
}

// ToggleTheme switches light to dark and anything else to light.
func (s *Slice) ToggleTheme(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := Light
	if s.state.CurrentTheme == Light {
		next = Dark
	}
	s.setCurrentLocked(ctx, next)
	return next
}

// SetSystemPreference records the detected OS preference.  Only light and
// dark are meaningful; other values are ignored.
func (s *Slice) SetSystemPreference(pref string) bool {
	pref = strings.ToLower(strings.TrimSpace(pref))
	if pref != Light && pref != Dark {
		return false
	}
	s.mu.Lock()
	s.state.SystemPreference = pref
	s.mu.Unlock()
	return true
}

// UseSystemTheme activates the last detected OS preference.
func (s *Slice) UseSystemTheme(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCurrentLocked(ctx, s.state.SystemPreference)
	return s.state.CurrentTheme
}

// AddCustomTheme adds t or replaces the custom theme with the same name.
// Empty names and the built-in names are refused.
func (s *Slice) AddCustomTheme(ctx context.Context, t CustomTheme) bool {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" || t.Name == Light || t.Name == Dark {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := false
	for i := range s.state.CustomThemes {
		if s.state.CustomThemes[i].Name == t.Name {
			s.state.CustomThemes[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		s.state.CustomThemes = append(s.state.CustomThemes, t)
	}
	s.rebuildAvailableLocked()
	s.bridge.Save(ctx, bridge.KeyCustomThemes, s.state.CustomThemes)
	return true
}

// RemoveCustomTheme deletes a custom theme.  Removing the active theme
// falls back to light.
func (s *Slice) RemoveCustomTheme(ctx context.Context, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.state.CustomThemes {
		if s.state.CustomThemes[i].Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	s.state.CustomThemes = append(s.state.CustomThemes[:idx:idx], s.state.CustomThemes[idx+1:]...)
	s.rebuildAvailableLocked()
	s.bridge.Save(ctx, bridge.KeyCustomThemes, s.state.CustomThemes)
	if s.state.CurrentTheme == name {
		s.setCurrentLocked(ctx, Light)
	}
	return true
}

func (s *Slice) setCurrentLocked(ctx context.Context, name string) {
	s.state.CurrentTheme = name
	s.bridge.Save(ctx, bridge.KeyTheme, name)
}

func (s *Slice) availableLocked(name string) bool {
	for _, n := range s.state.AvailableThemes {
		if n == name {
			return true
		}
	}
	return false
}

func (s *Slice) rebuildAvailableLocked() {
	names := []string{Light, Dark}
	for _, t := range s.state.CustomThemes {
		names = append(names, t.Name)
	}
	s.state.AvailableThemes = names
}
