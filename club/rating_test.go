package club

import (
	"testing"

	"github.com/mvierow/clubbot/models"
)

func TestMaxRatingPerClub(t *testing.T) {
	if max := MaxRating(models.ClubBook); max != 5 {
		t.Fatalf("expected books to be rated out of 5, got %d", max)
	}
	if max := MaxRating(models.ClubAlbum); max != 10 {
		t.Fatalf("expected albums to be rated out of 10, got %d", max)
	}
}

func TestValidRating(t *testing.T) {
	if !ValidRating(models.ClubBook, 5) {
		t.Fatal("expected 5 to be a valid book rating")
	}
	if ValidRating(models.ClubBook, 6) {
		t.Fatal("expected 6 to be out of scale for books")
	}
	if !ValidRating(models.ClubAlbum, 6) {
		t.Fatal("expected 6 to be a valid album rating")
	}
	if ValidRating(models.ClubAlbum, 0) {
		t.Fatal("expected 0 to be out of scale")
	}
	if ValidRating(models.ClubAlbum, 11) {
		t.Fatal("expected 11 to be out of scale for albums")
	}
}
