package playlist

// RepeatMode defines how traversal behaves at track and playlist boundaries.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatTrack
	RepeatAlbum
	RepeatPlaylist
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "Off"
	case RepeatTrack:
		return "Track"
	case RepeatAlbum:
		return "Album"
	case RepeatPlaylist:
		return "Playlist"
	default:
		return "Unknown"
	}
}

// ShuffleMode defines how the playback order permutation is generated.
type ShuffleMode int

const (
	ShuffleOff ShuffleMode = iota
	ShuffleAll
	ShuffleAlbum
	ShuffleArtist
)

// String returns the shuffle mode name.
func (m ShuffleMode) String() string {
	switch m {
	case ShuffleOff:
		return "Off"
	case ShuffleAll:
		return "All"
	case ShuffleAlbum:
		return "Album"
	case ShuffleArtist:
		return "Artist"
	default:
		return "Unknown"
	}
}
