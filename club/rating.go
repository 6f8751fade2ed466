package club

import "github.com/mvierow/clubbot/models"

// MaxRating returns the rating ceiling for the club. Books take a
// 1-5 score, albums a 1-10 score.
func MaxRating(kind models.ClubKind) int {
	if kind == models.ClubBook {
		return 5
	}
	return 10
}

// ValidRating reports whether the score sits inside the club's scale.
func ValidRating(kind models.ClubKind, rating int) bool {
	return rating >= 1 && rating <= MaxRating(kind)
}
