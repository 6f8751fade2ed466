package plugins

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/RichardKnop/machinery/v1/tasks"
	"github.com/bwmarrin/discordgo"
	humanize "github.com/dustin/go-humanize"
	"github.com/karrick/tparse/v2"
	"github.com/mvierow/clubbot/cache"
	"github.com/mvierow/clubbot/club"
	"github.com/mvierow/clubbot/emojis"
	"github.com/mvierow/clubbot/helpers"
	"github.com/mvierow/clubbot/metrics"
	"github.com/mvierow/clubbot/models"
	"github.com/mvierow/clubbot/services/googlebooks"
)

// BookClub runs the book rotation: everyone may nominate one book per
// round, a reaction poll picks the next read.
type BookClub struct{}

const bookEmbedColor = 0x8B4513

func (b *BookClub) Commands() []string {
	return []string{
		"suggestbook",
		"booksuggestions",
		"removebooksuggestion",
		"bookinfo",
		"pollbooks",
		"endbookpoll",
		"currentread",
		"setcurrentread",
		"endcurrentread",
		"ratebook",
		"readhistory",
		"topbooks",
	}
}

func (b *BookClub) Init(session *discordgo.Session) {
}

func (b *BookClub) Uninit(session *discordgo.Session) {
}

func (b *BookClub) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	switch command {
	case "suggestbook":
		b.actionSuggest(content, msg)
	case "booksuggestions":
		b.actionSuggestions(msg)
	case "removebooksuggestion":
		b.actionRemoveSuggestion(msg)
	case "bookinfo":
		b.actionInfo(content, msg)
	case "pollbooks":
		helpers.RequireAdmin(msg, func() {
			b.actionOpenPoll(content, msg)
		})
	case "endbookpoll":
		helpers.RequireAdmin(msg, func() {
			b.actionEndPoll(msg)
		})
	case "currentread":
		b.actionCurrent(msg)
	case "setcurrentread":
		helpers.RequireAdmin(msg, func() {
			b.actionSetCurrent(content, msg)
		})
	case "endcurrentread":
		helpers.RequireAdmin(msg, func() {
			b.actionEndCurrent(msg)
		})
	case "ratebook":
		b.actionRate(content, msg)
	case "readhistory":
		b.actionHistory(msg)
	case "topbooks":
		b.actionTop(msg)
	}
}

func (b *BookClub) actionSuggest(content string, msg *discordgo.Message) {
	session := cache.GetSession()
	session.ChannelTyping(msg.ChannelID)

	query := strings.TrimSpace(content)
	if query == "" {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("bot.arguments.too-few"))
		return
	}

	volume, err := googlebooks.Search(query)
	if err == googlebooks.ErrNotFound {
		helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.bookclub.book-not-found", query))
		return
	}
	helpers.Relax(err)

	stores := club.NewMongoStores(models.ClubBook)
	register := club.NewRegister(stores.Suggestions, stores.History, nil, false)

	entry, err := register.Submit(msg.Author.ID, models.SuggestionEntry{
		ItemRef:  volume.ID,
		Title:    volume.Title,
		Artist:   volume.AuthorsText(),
		CoverURL: volume.Thumbnail,
		ItemURL:  volume.InfoLink,
	})
	switch err {
	case nil:
	case club.ErrDuplicateSuggestion:
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.bookclub.suggestion-duplicate"))
		return
	case club.ErrAlreadyPicked:
		helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.bookclub.already-picked", volume.Title))
		return
	default:
		helpers.Relax(err)
	}

	metrics.SuggestionsReceived.Add(1)

	_, err = helpers.SendEmbed(msg.ChannelID, &discordgo.MessageEmbed{
		Color:       bookEmbedColor,
		Title:       helpers.GetTextF("plugins.bookclub.suggestion-added", msg.Author.Username),
		Description: fmt.Sprintf("**%s** by %s", entry.Title, entry.Artist),
		URL:         entry.ItemURL,
		Thumbnail:   embedThumbnail(entry.CoverURL),
	})
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}

func (b *BookClub) actionSuggestions(msg *discordgo.Message) {
	stores := club.NewMongoStores(models.ClubBook)
	register := club.NewRegister(stores.Suggestions, stores.History, nil, false)

	entries, err := register.List()
	helpers.Relax(err)

	if len(entries) <= 0 {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.bookclub.no-suggestions"))
		return
	}

	listEmbed := &discordgo.MessageEmbed{
		Color: bookEmbedColor,
		Title: helpers.GetTextF("plugins.bookclub.suggestions-title", len(entries)),
	}
	for _, entry := range entries {
		listEmbed.Fields = append(listEmbed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s by %s", entry.Title, entry.Artist),
			Value: helpers.GetTextF("plugins.bookclub.suggestion-line", helpers.GetUserUsername(entry.UserID), humanize.Time(entry.SubmittedAt)),
		})
	}

	helpers.SendPagedMessage(msg, listEmbed, 5)
}

func (b *BookClub) actionRemoveSuggestion(msg *discordgo.Message) {
	stores := club.NewMongoStores(models.ClubBook)
	register := club.NewRegister(stores.Suggestions, stores.History, nil, false)

	err := register.Withdraw(msg.Author.ID)
	if err == club.ErrNothingToWithdraw {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.bookclub.nothing-to-withdraw"))
		return
	}
	helpers.Relax(err)

	helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.bookclub.suggestion-withdrawn"))
}

func (b *BookClub) actionInfo(content string, msg *discordgo.Message) {
	session := cache.GetSession()
	session.ChannelTyping(msg.ChannelID)

	query := strings.TrimSpace(content)
	if query == "" {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("bot.arguments.too-few"))
		return
	}

	volume, err := googlebooks.Search(query)
	if err == googlebooks.ErrNotFound {
		helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.bookclub.book-not-found", query))
		return
	}
	helpers.Relax(err)

	infoEmbed := &discordgo.MessageEmbed{
		Color:       bookEmbedColor,
		Title:       fmt.Sprintf("%s by %s", volume.Title, volume.AuthorsText()),
		Description: volume.Description,
		URL:         volume.InfoLink,
		Thumbnail:   embedThumbnail(volume.Thumbnail),
	}
	if volume.PageCount > 0 {
		infoEmbed.Fields = append(infoEmbed.Fields, &discordgo.MessageEmbedField{
			Name: "Pages", Value: strconv.Itoa(volume.PageCount), Inline: true,
		})
	}
	if volume.PublishedDate != "" {
		infoEmbed.Fields = append(infoEmbed.Fields, &discordgo.MessageEmbedField{
			Name: "Published", Value: volume.PublishedDate, Inline: true,
		})
	}

	_, err = helpers.SendEmbed(msg.ChannelID, infoEmbed)
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}

func (b *BookClub) actionOpenPoll(content string, msg *discordgo.Message) {
	session := cache.GetSession()
	session.ChannelTyping(msg.ChannelID)

	stores := club.NewMongoStores(models.ClubBook)
	register := club.NewRegister(stores.Suggestions, stores.History, nil, false)
	poll := club.NewPoll(stores.Polls, stores.Votes)

	entries, err := register.List()
	helpers.Relax(err)
	if len(entries) <= 0 {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.bookclub.no-suggestions"))
		return
	}
	// the reaction numbers only go up to ten
	if len(entries) > 10 {
		entries = entries[:10]
	}

	var deadline time.Time
	args := strings.Fields(content)
	if len(args) > 0 {
		deadline, err = tparse.AddDuration(time.Now().UTC(), args[0])
		if err != nil {
			helpers.SendMessage(msg.ChannelID, helpers.GetText("bot.arguments.invalid"))
			return
		}
	}

	pollEmbed := &discordgo.MessageEmbed{
		Color:       bookEmbedColor,
		Title:       helpers.GetText("plugins.bookclub.poll-title"),
		Description: helpers.GetText("plugins.bookclub.poll-howto"),
	}
	for i, entry := range entries {
		pollEmbed.Fields = append(pollEmbed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s %s", emojis.From(strconv.Itoa(i+1)), entry.Title),
			Value: helpers.GetTextF("plugins.bookclub.poll-line", entry.Artist, helpers.GetUserUsername(entry.UserID)),
		})
	}
	if !deadline.IsZero() {
		pollEmbed.Footer = &discordgo.MessageEmbedFooter{
			Text: helpers.GetTextF("plugins.bookclub.poll-deadline", deadline.Format(time.RFC1123)),
		}
	}

	pollMessages, err := helpers.SendEmbed(msg.ChannelID, pollEmbed)
	helpers.Relax(err)
	if len(pollMessages) <= 0 {
		return
	}
	pollMessage := pollMessages[0]

	err = poll.Open(models.PollEntry{
		OpenedBy:  msg.Author.ID,
		ChannelID: pollMessage.ChannelID,
		MessageID: pollMessage.ID,
		Deadline:  deadline,
		Snapshot:  entries,
	})
	if err == club.ErrPollAlreadyOpen {
		session.ChannelMessageDelete(pollMessage.ChannelID, pollMessage.ID)
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.bookclub.poll-already-open"))
		return
	}
	helpers.Relax(err)

	for i := range entries {
		err = session.MessageReactionAdd(pollMessage.ChannelID, pollMessage.ID, emojis.From(strconv.Itoa(i+1)))
		helpers.Relax(err)
	}

	if !deadline.IsZero() {
		signature := &tasks.Signature{
			Name: "close_book_poll",
			ETA:  &deadline,
		}
		_, err = cache.GetMachineryServer().SendTask(signature)
		helpers.Relax(err)
	}
}

// OnReactionAdd counts number reactions on the live poll message as votes
func (b *BookClub) OnReactionAdd(reaction *discordgo.MessageReactionAdd, session *discordgo.Session) {
	defer helpers.Recover()

	if reaction.UserID == session.State.User.ID {
		return
	}

	number := emojis.ToNumber(reaction.Emoji.Name)
	if number < 1 {
		return
	}

	stores := club.NewMongoStores(models.ClubBook)
	poll := club.NewPoll(stores.Polls, stores.Votes)

	entry, err := poll.Current()
	helpers.Relax(err)
	if entry == nil || !entry.Open || entry.MessageID != reaction.MessageID {
		return
	}
	if number > len(entry.Snapshot) {
		return
	}

	err = poll.CastVote(reaction.UserID, entry.Snapshot[number-1].ID)
	switch err {
	case nil:
		metrics.VotesCast.Add(1)
	case club.ErrPollClosed, club.ErrUnknownNomination:
		// late or stray reaction, nothing to count
	default:
		helpers.Relax(err)
	}
}

func (b *BookClub) OnReactionRemove(reaction *discordgo.MessageReactionRemove, session *discordgo.Session) {
}

func (b *BookClub) actionEndPoll(msg *discordgo.Message) {
	session := cache.GetSession()
	session.ChannelTyping(msg.ChannelID)

	result, err := closeBookPoll(time.Now().UTC())
	switch err {
	case nil:
	case club.ErrPollClosed:
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.bookclub.no-open-poll"))
		return
	case club.ErrNoVotes:
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.bookclub.poll-no-votes"))
		return
	default:
		helpers.Relax(err)
	}

	announceBookWinner(msg.ChannelID, result)
}

// CloseBookPollTask is the machinery task closing a poll at its
// deadline. A poll that was already closed by hand is not an error.
func CloseBookPollTask() error {
	defer helpers.Recover()

	stores := club.NewMongoStores(models.ClubBook)
	poll := club.NewPoll(stores.Polls, stores.Votes)

	entry, err := poll.Current()
	if err != nil {
		return err
	}
	if entry == nil {
		return nil
	}
	channelID := entry.ChannelID

	result, err := closeBookPoll(time.Now().UTC())
	switch err {
	case nil:
	case club.ErrPollClosed:
		return nil
	case club.ErrNoVotes:
		helpers.SendMessage(channelID, helpers.GetText("plugins.bookclub.poll-no-votes"))
		return nil
	default:
		return err
	}

	announceBookWinner(channelID, result)
	return nil
}

// closeBookPoll flips the poll closed, tallies, and archives the round.
// The conditional close makes the manual command and the deadline task
// race safely, the loser gets ErrPollClosed.
func closeBookPoll(now time.Time) (*models.CurrentEntry, error) {
	stores := club.NewMongoStores(models.ClubBook)
	poll := club.NewPoll(stores.Polls, stores.Votes)
	archiver := club.NewArchiver(stores.Current, stores.History, stores.Suggestions, stores.Votes, stores.Polls)

	closed, err := poll.Close(now)
	if err != nil {
		return nil, err
	}

	votes, err := poll.Votes()
	if err != nil {
		return nil, err
	}

	winner, err := club.Tally(closed.Snapshot, votes)
	if err == club.ErrNoVotes {
		// drop the dead poll state so the next pollbooks opens cleanly,
		// the nominations stay for the next one
		if discardErr := poll.Discard(); discardErr != nil {
			return nil, discardErr
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	entry, err := archiver.CloseRound(models.ClubBook, winner, now)
	if err != nil {
		if _, ok := err.(*club.PartialFailureError); ok && entry != nil {
			// the winner is persisted, log the leftover cleanup
			cache.GetLogger().WithField("module", "bookclub").Error("Round archive left work behind: ", err.Error())
		} else {
			return nil, err
		}
	}

	metrics.RoundsArchived.Add(1)
	return entry, nil
}

func announceBookWinner(channelID string, entry *models.CurrentEntry) {
	helpers.SendEmbed(channelID, &discordgo.MessageEmbed{
		Color:       bookEmbedColor,
		Title:       helpers.GetText("plugins.bookclub.poll-winner-title"),
		Description: helpers.GetTextF("plugins.bookclub.poll-winner", entry.Title, entry.Artist, helpers.GetUserUsername(entry.PickedBy)),
		URL:         entry.ItemURL,
		Thumbnail:   embedThumbnail(entry.CoverURL),
	})
}

func (b *BookClub) actionCurrent(msg *discordgo.Message) {
	stores := club.NewMongoStores(models.ClubBook)
	archiver := club.NewArchiver(stores.Current, stores.History, stores.Suggestions, stores.Votes, stores.Polls)

	current, err := archiver.Current()
	helpers.Relax(err)
	if current == nil {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.bookclub.no-current-read"))
		return
	}

	_, err = helpers.SendEmbed(msg.ChannelID, &discordgo.MessageEmbed{
		Color:       bookEmbedColor,
		Title:       helpers.GetText("plugins.bookclub.current-read-title"),
		Description: helpers.GetTextF("plugins.bookclub.current-read", current.Title, current.Artist, helpers.GetUserUsername(current.PickedBy), humanize.Time(current.StartedAt)),
		URL:         current.ItemURL,
		Thumbnail:   embedThumbnail(current.CoverURL),
	})
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}

func (b *BookClub) actionSetCurrent(content string, msg *discordgo.Message) {
	session := cache.GetSession()
	session.ChannelTyping(msg.ChannelID)

	query := strings.TrimSpace(content)
	if query == "" {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("bot.arguments.too-few"))
		return
	}

	volume, err := googlebooks.Search(query)
	if err == googlebooks.ErrNotFound {
		helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.bookclub.book-not-found", query))
		return
	}
	helpers.Relax(err)

	stores := club.NewMongoStores(models.ClubBook)
	archiver := club.NewArchiver(stores.Current, stores.History, stores.Suggestions, stores.Votes, stores.Polls)

	entry, err := archiver.Start(models.ClubBook, models.SuggestionEntry{
		UserID:   msg.Author.ID,
		ItemRef:  volume.ID,
		Title:    volume.Title,
		Artist:   volume.AuthorsText(),
		CoverURL: volume.Thumbnail,
		ItemURL:  volume.InfoLink,
	}, time.Now().UTC())
	if err == club.ErrRoundActive {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.bookclub.round-active"))
		return
	}
	helpers.Relax(err)

	helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.bookclub.current-read-set", entry.Title))
}

func (b *BookClub) actionEndCurrent(msg *discordgo.Message) {
	stores := club.NewMongoStores(models.ClubBook)
	archiver := club.NewArchiver(stores.Current, stores.History, stores.Suggestions, stores.Votes, stores.Polls)

	current, err := archiver.Current()
	helpers.Relax(err)
	if current == nil {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.bookclub.no-current-read"))
		return
	}

	if !helpers.ConfirmEmbed(msg.ChannelID, msg.Author,
		helpers.GetTextF("plugins.bookclub.end-confirm", current.Title), "✅", "🚫") {
		return
	}

	entry, err := archiver.Retire(models.ClubBook, time.Now().UTC())
	if err == club.ErrNoCurrentSelection {
		helpers.SendMessage(msg.ChannelID, helpers.GetText("plugins.bookclub.no-current-read"))
		return
	}
	helpers.Relax(err)

	metrics.RoundsArchived.Add(1)
	helpers.SendMessage(msg.ChannelID, helpers.GetTextF("plugins.bookclub.current-read-ended", entry.Title))
}

func (b *BookClub) actionRate(content string, msg *discordgo.Message) {
	rateClubItem(models.ClubBook, "plugins.bookclub", content, msg)
}

func (b *BookClub) actionHistory(msg *discordgo.Message) {
	sendClubHistory(models.ClubBook, "plugins.bookclub", bookEmbedColor, msg)
}

func (b *BookClub) actionTop(msg *discordgo.Message) {
	sendClubTop(models.ClubBook, "plugins.bookclub", bookEmbedColor, msg)
}

func (b *BookClub) OnMessage(content string, msg *discordgo.Message, session *discordgo.Session) {
}

func (b *BookClub) OnGuildMemberAdd(member *discordgo.Member, session *discordgo.Session) {
}

func (b *BookClub) OnGuildMemberRemove(member *discordgo.Member, session *discordgo.Session) {
}
