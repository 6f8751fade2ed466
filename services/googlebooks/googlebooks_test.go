package googlebooks

import (
	"testing"
)

const sampleSearchResult = `{
	"kind": "books#volumes",
	"totalItems": 1,
	"items": [
		{
			"id": "7EWfzQEACAAJ",
			"volumeInfo": {
				"title": "Blood Meridian",
				"authors": ["Cormac McCarthy"],
				"publishedDate": "1985",
				"description": "<p>An epic novel of the violence and depravity that attended America's westward expansion.</p>",
				"pageCount": 351,
				"imageLinks": {
					"thumbnail": "http://books.google.com/books/content?id=7EWfzQEACAAJ"
				},
				"infoLink": "https://books.google.com/books?id=7EWfzQEACAAJ"
			}
		}
	]
}`

func TestParseSearchResult(t *testing.T) {
	volume, err := ParseSearchResult([]byte(sampleSearchResult))
	if err != nil {
		t.Fatal(err)
	}

	if volume.ID != "7EWfzQEACAAJ" {
		t.Errorf("unexpected id: %s", volume.ID)
	}
	if volume.Title != "Blood Meridian" {
		t.Errorf("unexpected title: %s", volume.Title)
	}
	if volume.AuthorsText() != "Cormac McCarthy" {
		t.Errorf("unexpected authors: %s", volume.AuthorsText())
	}
	if volume.PageCount != 351 {
		t.Errorf("unexpected page count: %d", volume.PageCount)
	}
}

func TestParseSearchResultStripsHTML(t *testing.T) {
	volume, err := ParseSearchResult([]byte(sampleSearchResult))
	if err != nil {
		t.Fatal(err)
	}

	expected := "An epic novel of the violence and depravity that attended America's westward expansion."
	if volume.Description != expected {
		t.Errorf("expected sanitized description, got: %q", volume.Description)
	}
}

func TestParseSearchResultUpgradesThumbnailToHTTPS(t *testing.T) {
	volume, err := ParseSearchResult([]byte(sampleSearchResult))
	if err != nil {
		t.Fatal(err)
	}

	if volume.Thumbnail != "https://books.google.com/books/content?id=7EWfzQEACAAJ" {
		t.Errorf("unexpected thumbnail: %s", volume.Thumbnail)
	}
}

func TestParseSearchResultNoItems(t *testing.T) {
	_, err := ParseSearchResult([]byte(`{"kind": "books#volumes", "totalItems": 0}`))
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAuthorsTextFallback(t *testing.T) {
	volume := &Volume{}
	if volume.AuthorsText() != "Unknown Author" {
		t.Errorf("unexpected fallback: %s", volume.AuthorsText())
	}
}
