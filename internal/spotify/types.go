package spotify

// User is the subset of a Spotify profile stored locally.
type User struct {
	ID          string
	DisplayName string
	AvatarURL   string
}

// Image is a cover or avatar image.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// Artist identifies a track artist.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album is the album a track belongs to.
type Album struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Track is a playlist track trimmed to what clients render.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	URI        string   `json:"uri"`
	DurationMs int      `json:"duration_ms"`
	PreviewURL string   `json:"preview_url,omitempty"`
}

// TrackItem wraps a track the way Spotify's playlist pages do.
type TrackItem struct {
	Track Track `json:"track"`
}

// TrackPage is the first page of a playlist's tracks.
type TrackPage struct {
	Total int         `json:"total"`
	Items []TrackItem `json:"items"`
}

// Playlist is a hydrated playlist.
type Playlist struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Images       []Image           `json:"images"`
	ExternalURLs map[string]string `json:"external_urls"`
	Tracks       TrackPage         `json:"tracks"`
	URI          string            `json:"uri"`
}
