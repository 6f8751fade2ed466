package rest

import (
	"net/http"
	"time"

	"github.com/emicklei/go-restful"
	"github.com/mvierow/clubbot/cache"
	"github.com/mvierow/clubbot/club"
	"github.com/mvierow/clubbot/models"
	"github.com/pkg/errors"
)

func NewRestServices() []*restful.WebService {
	services := make([]*restful.WebService, 0)

	service := new(restful.WebService)
	service.
		Path("/bot/stats").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)
	service.Route(service.GET("").To(GetBotStats))
	services = append(services, service)

	service = new(restful.WebService)
	service.
		Path("/club").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	service.Route(service.GET("/{kind}/current").To(GetClubCurrent))
	service.Route(service.GET("/{kind}/suggestions").To(GetClubSuggestions))
	service.Route(service.GET("/{kind}/history").To(GetClubHistory))
	service.Route(service.GET("/{kind}/rotation").To(GetClubRotation))
	services = append(services, service)

	return services
}

func GetBotStats(request *restful.Request, response *restful.Response) {
	users := make(map[string]bool)
	guilds := cache.GetSession().State.Guilds

	for _, guild := range guilds {
		for _, member := range guild.Members {
			users[member.User.ID] = true
		}
	}

	response.WriteEntity(&models.Rest_Statitics_Bot{
		Users:  len(users),
		Guilds: len(guilds),
	})
}

func GetClubCurrent(request *restful.Request, response *restful.Response) {
	kind, err := clubKindParameter(request)
	if err != nil {
		response.WriteError(http.StatusBadRequest, err)
		return
	}

	stores := club.NewMongoStores(kind)
	current, err := stores.Current.Get()
	if err != nil {
		response.WriteError(http.StatusInternalServerError, err)
		return
	}
	if current == nil {
		response.WriteError(http.StatusNotFound, errors.New("No current selection."))
		return
	}

	response.WriteEntity(&models.Rest_Club_Current{
		Kind:      string(current.Kind),
		ItemRef:   current.ItemRef,
		Title:     current.Title,
		Artist:    current.Artist,
		CoverURL:  current.CoverURL,
		ItemURL:   current.ItemURL,
		PickedBy:  current.PickedBy,
		StartedAt: current.StartedAt,
	})
}

func GetClubSuggestions(request *restful.Request, response *restful.Response) {
	kind, err := clubKindParameter(request)
	if err != nil {
		response.WriteError(http.StatusBadRequest, err)
		return
	}

	stores := club.NewMongoStores(kind)
	register := club.NewRegister(stores.Suggestions, stores.History, nil, false)
	entries, err := register.List()
	if err != nil {
		response.WriteError(http.StatusInternalServerError, err)
		return
	}

	result := make([]models.Rest_Club_Suggestion, 0, len(entries))
	for _, entry := range entries {
		result = append(result, models.Rest_Club_Suggestion{
			UserID:      entry.UserID,
			ItemRef:     entry.ItemRef,
			Title:       entry.Title,
			Artist:      entry.Artist,
			ItemURL:     entry.ItemURL,
			Comment:     entry.Comment,
			SubmittedAt: entry.SubmittedAt,
		})
	}

	response.WriteEntity(result)
}

func GetClubHistory(request *restful.Request, response *restful.Response) {
	kind, err := clubKindParameter(request)
	if err != nil {
		response.WriteError(http.StatusBadRequest, err)
		return
	}

	result, err := cachedClubHistory(kind)
	if err != nil {
		response.WriteError(http.StatusInternalServerError, err)
		return
	}

	response.WriteEntity(result)
}

func GetClubRotation(request *restful.Request, response *restful.Response) {
	kind, err := clubKindParameter(request)
	if err != nil {
		response.WriteError(http.StatusBadRequest, err)
		return
	}

	stores := club.NewMongoStores(kind)
	entries, err := stores.Rotation.All()
	if err != nil {
		response.WriteError(http.StatusInternalServerError, err)
		return
	}

	result := make([]models.Rest_Club_RotationEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, models.Rest_Club_RotationEntry{
			UserID:    entry.UserID,
			PickCount: entry.PickCount,
		})
	}

	response.WriteEntity(result)
}

// cachedClubHistory serves the history list from redis, the response
// only changes when a round gets archived or rated
func cachedClubHistory(kind models.ClubKind) (result []models.Rest_Club_HistoryItem, err error) {
	cacheCodec := cache.GetRedisCacheCodec()
	key := clubHistoryCacheKey(kind)

	if err = cacheCodec.Get(key, &result); err == nil {
		return result, nil
	}

	result, err = buildClubHistory(kind)
	if err != nil {
		return nil, err
	}

	err = cacheCodec.Set(redisCacheItem(key, result, 5*time.Minute))
	if err != nil {
		cache.GetLogger().WithField("module", "rest").Error("Error caching club history: ", err.Error())
	}

	return result, nil
}
