package store

import "cinescope/internal/models"

func (s *Store) Theme() models.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme stores t. Anything other than dark or light is rejected.
func (s *Store) SetTheme(t models.Theme) bool {
	if t != models.ThemeDark && t != models.ThemeLight {
		return false
	}
	s.mutate(func() bool {
		s.theme = t
		return true
	}, SliceTheme)
	return true
}

// ToggleTheme flips between dark and light and returns the new theme.
func (s *Store) ToggleTheme() models.Theme {
	var next models.Theme
	s.mutate(func() bool {
		next = s.theme.Toggled()
		s.theme = next
		return true
	}, SliceTheme)
	return next
}
