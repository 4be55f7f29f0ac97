package store

import "cinescope/internal/models"

// The player holds at most one open playback. Every Open call replaces
// whatever was open before. Player state is never persisted.

func (s *Store) OpenMovie(item models.ContentItem) {
	s.setPlayer(models.MoviePlayer(item))
}

func (s *Store) OpenTrailer(item models.ContentItem) {
	s.setPlayer(models.TrailerPlayer(item))
}

func (s *Store) OpenEpisode(seriesID, season int, ep models.Episode) {
	s.setPlayer(models.EpisodePlayer(seriesID, season, ep))
}

// ClosePlayer returns the player to idle.
func (s *Store) ClosePlayer() {
	s.setPlayer(models.IdlePlayer())
}

// Player returns a copy of the current player state.
func (s *Store) Player() models.PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.Clone()
}

func (s *Store) setPlayer(next models.PlayerState) {
	s.mutate(func() bool {
		s.player = next
		return true
	}, SlicePlayer)
}
