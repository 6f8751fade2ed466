package migrations

import (
	"github.com/mvierow/clubbot/models"
)

// The unique indexes back the engine's conditional writes: one live
// suggestion per member, one live vote per voter, one rotation entry
// per member, and archive rows keyed so retries cannot duplicate them.
func m0_create_club_indexes() {
	EnsureUniqueIndex(models.ClubSuggestionsTable, "kind", "userid")
	EnsureUniqueIndex(models.ClubVotesTable, "kind", "voterid")
	EnsureUniqueIndex(models.ClubRotationTable, "kind", "userid")
	EnsureUniqueIndex(models.ClubHistoryTable, "kind", "itemref", "startedat")
	EnsureUniqueIndex(models.ClubRatingsTable, "kind", "userid", "itemref")

	EnsureIndex(models.ClubHistoryTable, "kind", "endedat")
}
