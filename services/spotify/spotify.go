package spotify

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/mvierow/clubbot/helpers"
	"github.com/pkg/errors"
	"github.com/sethgrid/pester"
)

const (
	tokenEndpoint  = "https://accounts.spotify.com/api/token"
	searchEndpoint = "https://api.spotify.com/v1/search?type=album&limit=1&q=%s"
	albumEndpoint  = "https://api.spotify.com/v1/albums/%s"
)

var ErrNotFound = errors.New("spotify: no album found")

// Album is a single album from the spotify catalog
type Album struct {
	ID          string
	Name        string
	Artists     []string
	URL         string
	CoverURL    string
	ReleaseDate string
	TotalTracks int
}

// Client talks to the spotify web api with client credentials.
// The access token is shared and refreshed on demand.
type Client struct {
	clientID     string
	clientSecret string

	tokenMutex   sync.Mutex
	accessToken  string
	tokenExpires time.Time
}

func NewClient(clientID string, clientSecret string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// SearchAlbum returns the best matching album for the query
func (c *Client) SearchAlbum(query string) (*Album, error) {
	result, err := c.get(strings.Replace(searchEndpoint, "%s", url.QueryEscape(query), 1))
	if err != nil {
		return nil, errors.Wrap(err, "searching spotify")
	}

	return ParseSearchResult(result)
}

// GetAlbum returns the album with the given catalog id
func (c *Client) GetAlbum(albumID string) (*Album, error) {
	result, err := c.get(strings.Replace(albumEndpoint, "%s", url.QueryEscape(albumID), 1))
	if err != nil {
		return nil, errors.Wrap(err, "fetching spotify album")
	}

	json, err := gabs.ParseJSON(result)
	if err != nil {
		return nil, errors.Wrap(err, "parsing spotify response")
	}

	return parseAlbum(json)
}

func (c *Client) get(endpoint string) ([]byte, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}

	client := pester.New()
	client.Timeout = 15 * time.Second
	client.MaxRetries = 3
	client.Backoff = pester.ExponentialBackoff

	request, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("User-Agent", helpers.DEFAULT_UA)
	request.Header.Set("Authorization", "Bearer "+token)

	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if response.StatusCode != http.StatusOK {
		return nil, errors.Errorf("spotify: expected status 200; got %d", response.StatusCode)
	}

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, response.Body); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// token returns a valid access token, requesting a new one when the
// cached one expired. Concurrent callers share one refresh.
func (c *Client) token() (string, error) {
	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpires) {
		return c.accessToken, nil
	}

	client := &http.Client{Timeout: 15 * time.Second}

	request, err := http.NewRequest("POST", tokenEndpoint, strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Authorization", "Basic "+
		base64.StdEncoding.EncodeToString([]byte(c.clientID+":"+c.clientSecret)))

	response, err := client.Do(request)
	if err != nil {
		return "", errors.Wrap(err, "requesting spotify token")
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", errors.Errorf("spotify: token request failed with status %d", response.StatusCode)
	}

	json, err := gabs.ParseJSONBuffer(response.Body)
	if err != nil {
		return "", errors.Wrap(err, "parsing spotify token response")
	}

	token, ok := json.Path("access_token").Data().(string)
	if !ok || token == "" {
		return "", errors.New("spotify: token response carried no access_token")
	}
	expiresIn, ok := json.Path("expires_in").Data().(float64)
	if !ok {
		expiresIn = 3600
	}

	c.accessToken = token
	// refresh a minute early so requests never race the expiry
	c.tokenExpires = time.Now().Add(time.Duration(expiresIn)*time.Second - time.Minute)

	return c.accessToken, nil
}

// ParseSearchResult extracts the first album from a search response
func ParseSearchResult(data []byte) (*Album, error) {
	json, err := gabs.ParseJSON(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing spotify response")
	}

	items, err := json.Path("albums.items").Children()
	if err != nil || len(items) <= 0 {
		return nil, ErrNotFound
	}

	return parseAlbum(items[0])
}

func parseAlbum(item *gabs.Container) (*Album, error) {
	album := &Album{}

	if id, ok := item.Path("id").Data().(string); ok {
		album.ID = id
	}
	if album.ID == "" {
		return nil, ErrNotFound
	}

	if name, ok := item.Path("name").Data().(string); ok {
		album.Name = name
	}
	if artists, err := item.Path("artists").Children(); err == nil {
		for _, artist := range artists {
			if name, ok := artist.Path("name").Data().(string); ok {
				album.Artists = append(album.Artists, name)
			}
		}
	}
	if albumURL, ok := item.Path("external_urls.spotify").Data().(string); ok {
		album.URL = albumURL
	}
	if images, err := item.Path("images").Children(); err == nil && len(images) > 0 {
		if coverURL, ok := images[0].Path("url").Data().(string); ok {
			album.CoverURL = coverURL
		}
	}
	if releaseDate, ok := item.Path("release_date").Data().(string); ok {
		album.ReleaseDate = releaseDate
	}
	if totalTracks, ok := item.Path("total_tracks").Data().(float64); ok {
		album.TotalTracks = int(totalTracks)
	}

	return album, nil
}

// ArtistsText joins the artist list for display
func (a *Album) ArtistsText() string {
	if len(a.Artists) <= 0 {
		return "Unknown Artist"
	}
	return strings.Join(a.Artists, ", ")
}
