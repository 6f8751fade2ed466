package plugins

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	humanize "github.com/dustin/go-humanize"
	"github.com/mvierow/clubbot/cache"
	"github.com/mvierow/clubbot/club"
	"github.com/mvierow/clubbot/helpers"
	"github.com/mvierow/clubbot/metrics"
	"github.com/mvierow/clubbot/models"
	"github.com/mvierow/clubbot/services/spotify"
	"github.com/pkg/errors"
)

// MusicClub runs the album rotation: picks follow a strict turn order,
// whoever picked the least often is up next and an admin keeps the
// rotation in sync with the club role.
type MusicClub struct {
	spotifyClient *spotify.Client
}

const albumEmbedColor = 0x1DB954

var errClubRoleMissing = errors.New("musicclub: club role not found")

func (m *MusicClub) Commands() []string {
	return []string{
		"suggestalbum",
		"searchalbum",
		"currentalbum",
		"finishalbum",
		"albumhistory",
		"topalbums",
		"ratealbum",
		"skipturn",
		"nextpicker",
		"syncrotation",
	}
}

func (m *MusicClub) Init(session *discordgo.Session) {
	m.spotifyClient = spotify.NewClient(
		helpers.GetConfig().Path("spotify.client_id").Data().(string),
		helpers.GetConfig().Path("spotify.client_secret").Data().(string),
	)

	// seed the rotation from the club role right away instead of waiting
	// for the first syncrotation
	go func() {
		defer helpers.Recover()

		for _, guild := range session.State.Guilds {
			if _, _, _, err := m.syncRotation(guild.ID); err != nil {
				cache.GetLogger().WithField("module", "musicclub").Warn("Rotation sync failed: ", err.Error())
			}
		}
	}()
}

func (m *MusicClub) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	switch command {
	case "suggestalbum":
		m.actionSuggest(content, msg)
	case "searchalbum":
		m.actionSearch(content, msg)
	case "currentalbum":
		m.actionCurrent(msg)
	case "finishalbum":
		helpers.RequireAdmin(msg, func() {
			m.actionFinish(msg)
		})
	case "albumhistory":
		sendClubHistory(models.ClubAlbum, "plugins.musicclub", albumEmbedColor, msg)
	case "topalbums":
		sendClubTop(models.ClubAlbum, "plugins.musicclub", albumEmbedColor, msg)
	case "ratealbum":
		rateClubItem(models.ClubAlbum, "plugins.musicclub", content, msg)
	case "skipturn":
		helpers.RequireAdmin(msg, func() {
			m.actionSkipTurn(msg)
		})
	case "nextpicker":
		m.actionNextPicker(msg)
	case "syncrotation":
		helpers.RequireAdmin(msg, func() {
			m.actionSyncRotation(msg)
		})
	}
}

// actionSuggest is the whole album round in one command: the member
// whose turn it is picks, the pick immediately becomes the current album
func (m *MusicClub) actionSuggest(content string, msg *discordgo.Message) {
	session := cache.GetSession()
	session.ChannelTyping(msg.ChannelID)

	query := strings.TrimSpace(content)
	if query == "" {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("bot.arguments.too-few"))
		return
	}

	stores := club.NewMongoStores(models.ClubAlbum)
	ledger := club.NewLedger(stores.Rotation)
	register := club.NewRegister(stores.Suggestions, stores.History, ledger, true)
	archiver := club.NewArchiver(stores.Current, stores.History, stores.Suggestions, stores.Votes, stores.Polls)

	current, err := archiver.Current()
	helpers.Relax(err)
	if current != nil {
		helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.musicclub.round-active", current.Title))
		return
	}

	// eligibility follows the club role, resync it before gating the turn
	channel, err := session.Channel(msg.ChannelID)
	helpers.Relax(err)
	if _, _, _, err = m.syncRotation(channel.GuildID); err == errClubRoleMissing {
		helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.musicclub.role-not-found", clubRoleName()))
		return
	}
	helpers.Relax(err)

	inRotation, err := ledger.Contains(msg.Author.ID)
	helpers.Relax(err)
	if !inRotation {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.musicclub.not-eligible"))
		return
	}

	album, err := m.spotifyClient.SearchAlbum(query)
	if err == spotify.ErrNotFound {
		helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.musicclub.album-not-found", query))
		return
	}
	helpers.Relax(err)

	nomination, err := register.Submit(msg.Author.ID, models.SuggestionEntry{
		ItemRef:  album.ID,
		Title:    album.Name,
		Artist:   album.ArtistsText(),
		CoverURL: album.CoverURL,
		ItemURL:  album.URL,
	})
	switch err {
	case nil:
	case club.ErrEmptyRotation:
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.musicclub.rotation-empty"))
		return
	case club.ErrNotYourTurn:
		next, nextErr := ledger.NextPicker()
		if nextErr == nil {
			helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.musicclub.not-your-turn",
				helpers.GetUserUsername(next.UserID)))
		}
		return
	case club.ErrAlreadyPicked:
		helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.musicclub.already-picked", album.Name))
		return
	case club.ErrDuplicateSuggestion:
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.musicclub.suggestion-duplicate"))
		return
	default:
		helpers.Relax(err)
	}

	metrics.SuggestionsReceived.Add(1)

	entry, err := archiver.Start(models.ClubAlbum, nomination, time.Now().UTC())
	if err == club.ErrRoundActive {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.musicclub.round-just-started"))
		return
	}
	helpers.Relax(err)

	// the nomination served its purpose, the round lives in the current slot
	err = stores.Suggestions.Clear()
	helpers.Relax(err)

	_, err = helpers.SendEmbed(msg.ChannelID, &discordgo.MessageEmbed{
		Color:       albumEmbedColor,
		Title:       helpers.GetText("plugins.musicclub.album-of-the-week-title"),
		Description: helpers.GetTextF("plugins.musicclub.album-of-the-week", entry.Title, entry.Artist, msg.Author.Username),
		URL:         entry.ItemURL,
		Thumbnail:   embedThumbnail(entry.CoverURL),
	})
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}

// actionSearch previews an album from the catalog without touching the
// rotation, handy before spending a turn on it
func (m *MusicClub) actionSearch(content string, msg *discordgo.Message) {
	session := cache.GetSession()
	session.ChannelTyping(msg.ChannelID)

	query := strings.TrimSpace(content)
	if query == "" {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("bot.arguments.too-few"))
		return
	}

	album, err := m.spotifyClient.SearchAlbum(query)
	if err == spotify.ErrNotFound {
		helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.musicclub.album-not-found", query))
		return
	}
	helpers.Relax(err)

	infoEmbed := &discordgo.MessageEmbed{
		Color:     albumEmbedColor,
		Title:     fmt.Sprintf("%s by %s", album.Name, album.ArtistsText()),
		URL:       album.URL,
		Thumbnail: embedThumbnail(album.CoverURL),
	}
	if album.ReleaseDate != "" {
		infoEmbed.Fields = append(infoEmbed.Fields, &discordgo.MessageEmbedField{
			Name: "Released", Value: album.ReleaseDate, Inline: true,
		})
	}
	if album.TotalTracks > 0 {
		infoEmbed.Fields = append(infoEmbed.Fields, &discordgo.MessageEmbedField{
			Name: "Tracks", Value: strconv.Itoa(album.TotalTracks), Inline: true,
		})
	}

	_, err = helpers.SendEmbed(msg.ChannelID, infoEmbed)
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}

func (m *MusicClub) actionCurrent(msg *discordgo.Message) {
	stores := club.NewMongoStores(models.ClubAlbum)

	current, err := stores.Current.Get()
	helpers.Relax(err)
	if current == nil {
		m.sendNextPickerHint(msg.ChannelID, helpers.GetText("plugins.musicclub.no-current-album"))
		return
	}

	_, err = helpers.SendEmbed(msg.ChannelID, &discordgo.MessageEmbed{
		Color:       albumEmbedColor,
		Title:       helpers.GetText("plugins.musicclub.current-album-title"),
		Description: helpers.GetTextF("plugins.musicclub.current-album", current.Title, current.Artist, helpers.GetUserUsername(current.PickedBy), humanize.Time(current.StartedAt)),
		URL:         current.ItemURL,
		Thumbnail:   embedThumbnail(current.CoverURL),
	})
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}

func (m *MusicClub) actionFinish(msg *discordgo.Message) {
	stores := club.NewMongoStores(models.ClubAlbum)
	archiver := club.NewArchiver(stores.Current, stores.History, stores.Suggestions, stores.Votes, stores.Polls)

	entry, err := archiver.Retire(models.ClubAlbum, time.Now().UTC())
	if err == club.ErrNoCurrentSelection {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.musicclub.no-current-album"))
		return
	}
	helpers.Relax(err)

	metrics.RoundsArchived.Add(1)

	m.sendNextPickerHint(msg.ChannelID, helpers.GetTextF("plugins.musicclub.album-finished", entry.Title))
}

func (m *MusicClub) actionSkipTurn(msg *discordgo.Message) {
	stores := club.NewMongoStores(models.ClubAlbum)
	ledger := club.NewLedger(stores.Rotation)

	skipped, err := ledger.NextPicker()
	if err == club.ErrEmptyRotation {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.musicclub.rotation-empty"))
		return
	}
	helpers.Relax(err)

	err = ledger.RecordSkip(skipped.UserID)
	helpers.Relax(err)

	m.sendNextPickerHint(msg.ChannelID, helpers.GetTextF("plugins.musicclub.turn-skipped",
		helpers.GetUserUsername(skipped.UserID)))
}

func (m *MusicClub) actionNextPicker(msg *discordgo.Message) {
	m.sendNextPickerHint(msg.ChannelID, "")
}

func (m *MusicClub) sendNextPickerHint(channelID string, prefix string) {
	stores := club.NewMongoStores(models.ClubAlbum)
	ledger := club.NewLedger(stores.Rotation)

	text := prefix

	next, err := ledger.NextPicker()
	switch err {
	case nil:
		if text != "" {
			text += " "
		}
		text += helpers.GetTextF("plugins.musicclub.next-picker",
			helpers.GetUserUsername(next.UserID), next.PickCount)
	case club.ErrEmptyRotation:
		if text == "" {
			text = helpers.GetText("plugins.musicclub.rotation-empty")
		}
	default:
		helpers.Relax(err)
	}

	helpers.SendMessage(channelID, text)
}

// actionSyncRotation reconciles the pick ledger against the members
// carrying the configured club role
func (m *MusicClub) actionSyncRotation(msg *discordgo.Message) {
	session := cache.GetSession()
	session.ChannelTyping(msg.ChannelID)

	channel, err := session.Channel(msg.ChannelID)
	helpers.Relax(err)

	eligible, added, removed, err := m.syncRotation(channel.GuildID)
	if err == errClubRoleMissing {
		helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.musicclub.role-not-found", clubRoleName()))
		return
	}
	helpers.Relax(err)

	helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.musicclub.rotation-synced",
		len(eligible), added, removed))
}

// syncRotation reconciles the pick ledger against the members carrying
// the club role, newcomers enter the queue at zero picks and members
// who lost the role drop out
func (m *MusicClub) syncRotation(guildID string) (eligible []string, added int, removed int, err error) {
	role, err := helpers.GetGuildRoleByName(guildID, clubRoleName())
	if err != nil {
		return nil, 0, 0, errClubRoleMissing
	}

	eligible, err = helpers.GuildMembersWithRole(guildID, role.ID)
	if err != nil {
		return nil, 0, 0, err
	}

	stores := club.NewMongoStores(models.ClubAlbum)
	added, removed, err = club.NewLedger(stores.Rotation).Reconcile(eligible)
	return eligible, added, removed, err
}

func clubRoleName() string {
	return helpers.GetConfig().Path("musicclub.role").Data().(string)
}
