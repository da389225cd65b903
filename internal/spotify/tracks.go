package spotify

import (
	"github.com/zmb3/spotify/v2"
)

func convertUser(u *spotify.PrivateUser) *User {
	user := &User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
	}
	if len(u.Images) > 0 {
		user.AvatarURL = u.Images[0].URL
	}
	return user
}

func convertPlaylist(p *spotify.FullPlaylist) *Playlist {
	items := make([]TrackItem, 0, len(p.Tracks.Tracks))
	for _, pt := range p.Tracks.Tracks {
		items = append(items, TrackItem{Track: convertTrack(pt.Track)})
	}

	urls := make(map[string]string, len(p.ExternalURLs))
	for k, v := range p.ExternalURLs {
		urls[k] = v
	}

	return &Playlist{
		ID:           p.ID.String(),
		Name:         p.Name,
		Description:  p.Description,
		Images:       convertImages(p.Images),
		ExternalURLs: urls,
		Tracks: TrackPage{
			Total: int(p.Tracks.Total),
			Items: items,
		},
		URI: string(p.URI),
	}
}

// convertTrack keeps the fields a playlist view shows.
func convertTrack(t spotify.FullTrack) Track {
	artists := make([]Artist, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = Artist{ID: a.ID.String(), Name: a.Name}
	}

	return Track{
		ID:      t.ID.String(),
		Name:    t.Name,
		Artists: artists,
		Album: Album{
			ID:     t.Album.ID.String(),
			Name:   t.Album.Name,
			Images: convertImages(t.Album.Images),
		},
		URI:        string(t.URI),
		DurationMs: int(t.Duration),
		PreviewURL: t.PreviewURL,
	}
}

func convertImages(images []spotify.Image) []Image {
	out := make([]Image, len(images))
	for i, img := range images {
		out[i] = Image{URL: img.URL, Height: int(img.Height), Width: int(img.Width)}
	}
	return out
}
