package models

// PlayerMode is the tag of PlayerState.
type PlayerMode string

const (
	PlayerIdle    PlayerMode = "idle"
	PlayerMovie   PlayerMode = "movie"
	PlayerTrailer PlayerMode = "trailer"
	PlayerEpisode PlayerMode = "episode"
)

// EpisodeSelection identifies the episode open in the player.
type EpisodeSelection struct {
	SeriesID int     `json:"seriesId"`
	Season   int     `json:"season"`
	Episode  Episode `json:"episode"`
}

// PlayerState is the single playback slot. Item is set for movie and trailer
// modes, Episode for episode mode, neither when idle.
type PlayerState struct {
	Mode    PlayerMode        `json:"mode"`
	Item    *ContentItem      `json:"item,omitempty"`
	Episode *EpisodeSelection `json:"episode,omitempty"`
}

// IdlePlayer returns the closed state.
func IdlePlayer() PlayerState {
	return PlayerState{Mode: PlayerIdle}
}

// MoviePlayer returns the state for a full movie.
func MoviePlayer(item ContentItem) PlayerState {
	c := item.Clone()
	return PlayerState{Mode: PlayerMovie, Item: &c}
}

// TrailerPlayer returns the state for a trailer of item.
func TrailerPlayer(item ContentItem) PlayerState {
	c := item.Clone()
	return PlayerState{Mode: PlayerTrailer, Item: &c}
}

// EpisodePlayer returns the state for one episode of a series.
func EpisodePlayer(seriesID, season int, ep Episode) PlayerState {
	return PlayerState{Mode: PlayerEpisode, Episode: &EpisodeSelection{SeriesID: seriesID, Season: season, Episode: ep}}
}

// IsOpen reports whether anything is playing.
func (p PlayerState) IsOpen() bool {
	return p.Mode != "" && p.Mode != PlayerIdle
}

// Clone returns a copy that shares no pointers with p.
func (p PlayerState) Clone() PlayerState {
	if p.Item != nil {
		c := p.Item.Clone()
		p.Item = &c
	}
	if p.Episode != nil {
		e := *p.Episode
		p.Episode = &e
	}
	return p
}

// ProgressKey returns the key under which the open playback records
// progress. Trailers and the idle state have none.
func (p PlayerState) ProgressKey() (ProgressKey, bool) {
	switch {
	case p.Mode == PlayerMovie && p.Item != nil:
		return MovieKey(p.Item.ID), true
	case p.Mode == PlayerEpisode && p.Episode != nil:
		return EpisodeKey(p.Episode.SeriesID, p.Episode.Season, p.Episode.Episode.EpisodeNumber), true
	}
	return ProgressKey{}, false
}
