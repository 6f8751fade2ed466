package plugins

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	humanize "github.com/dustin/go-humanize"
	"github.com/mvierow/clubbot/club"
	"github.com/mvierow/clubbot/helpers"
	"github.com/mvierow/clubbot/models"
	"github.com/renstrom/fuzzysearch/fuzzy"
)

func embedThumbnail(coverURL string) *discordgo.MessageEmbedThumbnail {
	if coverURL == "" {
		return nil
	}
	return &discordgo.MessageEmbedThumbnail{URL: coverURL}
}

// ratedItem is a rateable selection, either the current one or an
// archived round
type ratedItem struct {
	ItemRef string
	Title   string
}

// rateClubItem stores the author's rating on the club's scale, without
// a title the current selection gets rated, with one the best matching
// history item
func rateClubItem(kind models.ClubKind, i18nPrefix string, content string, msg *discordgo.Message) {
	args, err := helpers.ToArgv(content)
	if err != nil || len(args) < 1 {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("bot.arguments.too-few"))
		return
	}

	rating, err := strconv.Atoi(args[0])
	if err != nil || !club.ValidRating(kind, rating) {
		helpers.SendMessage(msg.ChannelID, helpers.GetTextF(i18nPrefix+".rating-invalid", club.MaxRating(kind)))
		return
	}

	stores := club.NewMongoStores(kind)

	var target *ratedItem
	if len(args) > 1 {
		query := strings.Trim(strings.Join(args[1:], " "), "\"'")
		target, err = matchClubItem(stores, query)
		helpers.Relax(err)
		if target == nil {
			helpers.SendMessage(msg.ChannelID, helpers.GetTextF(i18nPrefix+".rating-no-match", query))
			return
		}
	} else {
		current, err := stores.Current.Get()
		helpers.Relax(err)
		if current == nil {
			helpers.SendMessage(msg.ChannelID, helpers.GetText(i18nPrefix+".rating-nothing-current"))
			return
		}
		target = &ratedItem{ItemRef: current.ItemRef, Title: current.Title}
	}

	err = stores.Ratings.Rate(models.RatingEntry{
		UserID:  msg.Author.ID,
		ItemRef: target.ItemRef,
		Rating:  rating,
		RatedAt: time.Now().UTC(),
	})
	helpers.Relax(err)

	average, count := ratingSummary(stores, target.ItemRef)
	helpers.SendMessage(msg.ChannelID, helpers.GetTextF(i18nPrefix+".rating-stored",
		target.Title, rating, club.MaxRating(kind), average, count))
}

// matchClubItem fuzzy-matches the query against the current selection
// and the archive
func matchClubItem(stores club.Stores, query string) (*ratedItem, error) {
	candidates := make([]ratedItem, 0)

	if current, err := stores.Current.Get(); err != nil {
		return nil, err
	} else if current != nil {
		candidates = append(candidates, ratedItem{ItemRef: current.ItemRef, Title: current.Title})
	}

	entries, err := stores.History.All()
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		candidates = append(candidates, ratedItem{ItemRef: entry.ItemRef, Title: entry.Title})
	}

	titles := make([]string, len(candidates))
	for i, candidate := range candidates {
		titles[i] = candidate.Title
	}

	ranks := fuzzy.RankFindFold(query, titles)
	if len(ranks) <= 0 {
		return nil, nil
	}
	sort.Sort(ranks)

	for _, candidate := range candidates {
		if candidate.Title == ranks[0].Target {
			return &candidate, nil
		}
	}
	return nil, nil
}

func ratingSummary(stores club.Stores, itemRef string) (average float64, count int) {
	ratings, err := stores.Ratings.ForItem(itemRef)
	if err != nil || len(ratings) <= 0 {
		return 0, 0
	}

	sum := 0
	for _, rating := range ratings {
		sum += rating.Rating
	}
	return float64(sum) / float64(len(ratings)), len(ratings)
}

func sendClubHistory(kind models.ClubKind, i18nPrefix string, color int, msg *discordgo.Message) {
	stores := club.NewMongoStores(kind)

	entries, err := stores.History.All()
	helpers.Relax(err)
	if len(entries) <= 0 {
		helpers.SendMessage(msg.ChannelID, helpers.GetText(i18nPrefix+".history-empty"))
		return
	}

	averages, counts := ratingsByItem(stores)

	historyEmbed := &discordgo.MessageEmbed{
		Color: color,
		Title: helpers.GetTextF(i18nPrefix+".history-title", len(entries)),
	}
	for _, entry := range entries {
		value := helpers.GetTextF(i18nPrefix+".history-line",
			helpers.GetUserUsername(entry.PickedBy), humanize.Time(entry.EndedAt))
		if counts[entry.ItemRef] > 0 {
			value += helpers.GetTextF(i18nPrefix+".history-rating",
				averages[entry.ItemRef], club.MaxRating(kind), counts[entry.ItemRef])
		}
		historyEmbed.Fields = append(historyEmbed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s by %s", entry.Title, entry.Artist),
			Value: value,
		})
	}

	helpers.SendPagedMessage(msg, historyEmbed, 5)
}

func sendClubTop(kind models.ClubKind, i18nPrefix string, color int, msg *discordgo.Message) {
	stores := club.NewMongoStores(kind)

	entries, err := stores.History.All()
	helpers.Relax(err)

	averages, counts := ratingsByItem(stores)

	rated := make([]models.HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		if counts[entry.ItemRef] > 0 {
			rated = append(rated, entry)
		}
	}
	if len(rated) <= 0 {
		helpers.SendMessage(msg.ChannelID, helpers.GetText(i18nPrefix+".top-empty"))
		return
	}

	sort.Slice(rated, func(i, j int) bool {
		if averages[rated[i].ItemRef] != averages[rated[j].ItemRef] {
			return averages[rated[i].ItemRef] > averages[rated[j].ItemRef]
		}
		return counts[rated[i].ItemRef] > counts[rated[j].ItemRef]
	})
	if len(rated) > 10 {
		rated = rated[:10]
	}

	topEmbed := &discordgo.MessageEmbed{
		Color: color,
		Title: helpers.GetText(i18nPrefix + ".top-title"),
	}
	for i, entry := range rated {
		topEmbed.Fields = append(topEmbed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("#%d %s by %s", i+1, entry.Title, entry.Artist),
			Value: helpers.GetTextF(i18nPrefix+".top-line",
				averages[entry.ItemRef], club.MaxRating(kind), counts[entry.ItemRef]),
		})
	}

	_, err = helpers.SendEmbed(msg.ChannelID, topEmbed)
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}

func ratingsByItem(stores club.Stores) (averages map[string]float64, counts map[string]int) {
	averages = make(map[string]float64)
	counts = make(map[string]int)

	ratings, err := stores.Ratings.All()
	if err != nil {
		return averages, counts
	}

	sums := make(map[string]int)
	for _, rating := range ratings {
		sums[rating.ItemRef] += rating.Rating
		counts[rating.ItemRef]++
	}
	for itemRef, sum := range sums {
		averages[itemRef] = float64(sum) / float64(counts[itemRef])
	}

	return averages, counts
}
