package store

import (
	"slices"
	"strings"

	"cinescope/internal/models"
)

// Profiles returns every profile in display order.
func (s *Store) Profiles() []models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.profiles)
}

// CurrentProfileID returns the active profile id as stored. It may not
// resolve to an existing profile.
func (s *Store) CurrentProfileID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentProfile
}

// CurrentProfile returns the active profile, falling back to the first one
// when the active id does not resolve.
func (s *Store) CurrentProfile() models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.profileIndex(s.currentProfile); i >= 0 {
		return s.profiles[i]
	}
	return s.profiles[0]
}

// SwitchProfile makes id active. The id is not validated.
func (s *Store) SwitchProfile(id int) {
	s.mutate(func() bool {
		s.currentProfile = id
		return true
	}, SliceCurrentProfile)
}

// AddProfile appends a profile with the next free id. The initial is the
// first character of name, uppercased.
func (s *Store) AddProfile(name, color string) models.Profile {
	name = strings.TrimSpace(name)
	var p models.Profile
	s.mutate(func() bool {
		maxID := 0
		for _, existing := range s.profiles {
			maxID = max(maxID, existing.ID)
		}
		p = models.Profile{ID: maxID + 1, Name: name, Color: color, Initial: models.InitialOf(name)}
		s.profiles = append(slices.Clip(s.profiles), p)
		return true
	}, SliceProfiles)
	return p
}

// DeleteProfile removes id. Deleting the last profile, or an unknown id, is
// a no-op and returns false. If the active profile is deleted the first
// remaining profile becomes active.
func (s *Store) DeleteProfile(id int) bool {
	changed := s.commit(func() []Slice {
		if len(s.profiles) <= 1 {
			return nil
		}
		i := s.profileIndex(id)
		if i < 0 {
			return nil
		}
		s.profiles = slices.Delete(slices.Clone(s.profiles), i, i+1)
		if s.currentProfile != id {
			return []Slice{SliceProfiles}
		}
		s.currentProfile = s.profiles[0].ID
		return []Slice{SliceProfiles, SliceCurrentProfile}
	})
	return len(changed) > 0
}

// UpdateProfile applies the non-nil fields of upd to profile id.
func (s *Store) UpdateProfile(id int, upd models.ProfileUpdate) (models.Profile, bool) {
	var updated models.Profile
	ok := s.mutate(func() bool {
		i := s.profileIndex(id)
		if i < 0 {
			return false
		}
		profiles := slices.Clone(s.profiles)
		profiles[i] = upd.Apply(profiles[i])
		s.profiles = profiles
		updated = profiles[i]
		return true
	}, SliceProfiles)
	return updated, ok
}

func (s *Store) profileIndex(id int) int {
	return slices.IndexFunc(s.profiles, func(p models.Profile) bool { return p.ID == id })
}
