package plugins

import (
	"github.com/bwmarrin/discordgo"
	"github.com/mvierow/clubbot/helpers"
	"github.com/mvierow/clubbot/version"
)

type About struct{}

func (a *About) Commands() []string {
	return []string{
		"about",
		"info",
	}
}

func (a *About) Init(session *discordgo.Session) {

}

func (a *About) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	aboutEmbed := &discordgo.MessageEmbed{
		Title:       helpers.GetText("plugins.about.title"),
		Description: helpers.GetText("plugins.about.description"),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Version", Value: version.BOT_VERSION, Inline: true},
			{Name: "Source", Value: "<https://github.com/mvierow/clubbot>", Inline: true},
		},
	}

	_, err := helpers.SendEmbed(msg.ChannelID, aboutEmbed)
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}
