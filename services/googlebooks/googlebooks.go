package googlebooks

import (
	"net/url"
	"strings"

	"github.com/Jeffail/gabs"
	"github.com/kennygrant/sanitize"
	"github.com/mvierow/clubbot/helpers"
	"github.com/pkg/errors"
)

const (
	volumesEndpoint = "https://www.googleapis.com/books/v1/volumes?q=%s&maxResults=1&printType=books"
	volumeEndpoint  = "https://www.googleapis.com/books/v1/volumes/%s"
)

var ErrNotFound = errors.New("googlebooks: no volume found")

// Volume is a single book from the google books catalog
type Volume struct {
	ID            string
	Title         string
	Authors       []string
	Description   string
	PageCount     int
	PublishedDate string
	Thumbnail     string
	InfoLink      string
}

// Search returns the best matching volume for the query
func Search(query string) (*Volume, error) {
	endpoint := strings.Replace(volumesEndpoint, "%s", url.QueryEscape(query), 1)

	result, err := helpers.NetGetUAWithError(endpoint, helpers.DEFAULT_UA)
	if err != nil {
		return nil, errors.Wrap(err, "searching google books")
	}

	return ParseSearchResult(result)
}

// GetVolume returns the volume with the given catalog id
func GetVolume(volumeID string) (*Volume, error) {
	endpoint := strings.Replace(volumeEndpoint, "%s", url.QueryEscape(volumeID), 1)

	result, err := helpers.NetGetUAWithError(endpoint, helpers.DEFAULT_UA)
	if err != nil {
		return nil, errors.Wrap(err, "fetching google books volume")
	}

	json, err := gabs.ParseJSON(result)
	if err != nil {
		return nil, errors.Wrap(err, "parsing google books response")
	}

	return parseVolume(json)
}

// ParseSearchResult extracts the first volume from a search response
func ParseSearchResult(data []byte) (*Volume, error) {
	json, err := gabs.ParseJSON(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing google books response")
	}

	items, err := json.Path("items").Children()
	if err != nil || len(items) <= 0 {
		return nil, ErrNotFound
	}

	return parseVolume(items[0])
}

func parseVolume(item *gabs.Container) (*Volume, error) {
	volume := &Volume{}

	if id, ok := item.Path("id").Data().(string); ok {
		volume.ID = id
	}
	if volume.ID == "" {
		return nil, ErrNotFound
	}

	info := item.Path("volumeInfo")
	if title, ok := info.Path("title").Data().(string); ok {
		volume.Title = title
	}
	if authors, err := info.Path("authors").Children(); err == nil {
		for _, author := range authors {
			if name, ok := author.Data().(string); ok {
				volume.Authors = append(volume.Authors, name)
			}
		}
	}
	if description, ok := info.Path("description").Data().(string); ok {
		// descriptions come with embedded html
		volume.Description = strings.TrimSpace(sanitize.HTML(description))
	}
	if pageCount, ok := info.Path("pageCount").Data().(float64); ok {
		volume.PageCount = int(pageCount)
	}
	if publishedDate, ok := info.Path("publishedDate").Data().(string); ok {
		volume.PublishedDate = publishedDate
	}
	if thumbnail, ok := info.Path("imageLinks.thumbnail").Data().(string); ok {
		volume.Thumbnail = strings.Replace(thumbnail, "http://", "https://", 1)
	}
	if infoLink, ok := info.Path("infoLink").Data().(string); ok {
		volume.InfoLink = infoLink
	}

	return volume, nil
}

// AuthorsText joins the author list for display
func (v *Volume) AuthorsText() string {
	if len(v.Authors) <= 0 {
		return "Unknown Author"
	}
	return strings.Join(v.Authors, ", ")
}
