package spotify

import (
	"testing"
)

const sampleSearchResult = `{
	"albums": {
		"items": [
			{
				"id": "2fGCAYUMssLKiUAoNdxGLx",
				"name": "In Rainbows",
				"artists": [
					{"id": "4Z8W4fKeB5YxbusRsdQVPb", "name": "Radiohead"}
				],
				"external_urls": {
					"spotify": "https://open.spotify.com/album/2fGCAYUMssLKiUAoNdxGLx"
				},
				"images": [
					{"url": "https://i.scdn.co/image/large", "height": 640},
					{"url": "https://i.scdn.co/image/small", "height": 64}
				],
				"release_date": "2007-10-10",
				"total_tracks": 10
			}
		]
	}
}`

func TestParseSearchResult(t *testing.T) {
	album, err := ParseSearchResult([]byte(sampleSearchResult))
	if err != nil {
		t.Fatal(err)
	}

	if album.ID != "2fGCAYUMssLKiUAoNdxGLx" {
		t.Errorf("unexpected id: %s", album.ID)
	}
	if album.Name != "In Rainbows" {
		t.Errorf("unexpected name: %s", album.Name)
	}
	if album.ArtistsText() != "Radiohead" {
		t.Errorf("unexpected artists: %s", album.ArtistsText())
	}
	if album.URL != "https://open.spotify.com/album/2fGCAYUMssLKiUAoNdxGLx" {
		t.Errorf("unexpected url: %s", album.URL)
	}
	if album.CoverURL != "https://i.scdn.co/image/large" {
		t.Errorf("expected the first image as cover, got: %s", album.CoverURL)
	}
	if album.TotalTracks != 10 {
		t.Errorf("unexpected track count: %d", album.TotalTracks)
	}
}

func TestParseSearchResultNoItems(t *testing.T) {
	_, err := ParseSearchResult([]byte(`{"albums": {"items": []}}`))
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestArtistsTextFallback(t *testing.T) {
	album := &Album{}
	if album.ArtistsText() != "Unknown Artist" {
		t.Errorf("unexpected fallback: %s", album.ArtistsText())
	}
}
