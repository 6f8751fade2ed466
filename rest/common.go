package rest

import (
	"fmt"
	"time"

	"github.com/emicklei/go-restful"
	rediscache "github.com/go-redis/cache"
	"github.com/mvierow/clubbot/club"
	"github.com/mvierow/clubbot/models"
	"github.com/pkg/errors"
)

func clubKindParameter(request *restful.Request) (models.ClubKind, error) {
	switch request.PathParameter("kind") {
	case string(models.ClubBook):
		return models.ClubBook, nil
	case string(models.ClubAlbum):
		return models.ClubAlbum, nil
	}
	return "", errors.New("unknown club kind")
}

func clubHistoryCacheKey(kind models.ClubKind) string {
	return fmt.Sprintf(models.Redis_Key_Club_History, string(kind))
}

func redisCacheItem(key string, object interface{}, expiration time.Duration) *rediscache.Item {
	return &rediscache.Item{
		Key:        key,
		Object:     object,
		Expiration: expiration,
	}
}

func buildClubHistory(kind models.ClubKind) ([]models.Rest_Club_HistoryItem, error) {
	stores := club.NewMongoStores(kind)

	entries, err := stores.History.All()
	if err != nil {
		return nil, err
	}

	ratings, err := stores.Ratings.All()
	if err != nil {
		return nil, err
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, rating := range ratings {
		sums[rating.ItemRef] += rating.Rating
		counts[rating.ItemRef]++
	}

	result := make([]models.Rest_Club_HistoryItem, 0, len(entries))
	for _, entry := range entries {
		item := models.Rest_Club_HistoryItem{
			ItemRef:      entry.ItemRef,
			Title:        entry.Title,
			Artist:       entry.Artist,
			ItemURL:      entry.ItemURL,
			PickedBy:     entry.PickedBy,
			StartedAt:    entry.StartedAt,
			EndedAt:      entry.EndedAt,
			RatingsCount: counts[entry.ItemRef],
		}
		if item.RatingsCount > 0 {
			item.AverageRating = float64(sums[entry.ItemRef]) / float64(item.RatingsCount)
		}
		result = append(result, item)
	}

	return result, nil
}
