package helpers

import (
	"github.com/bwmarrin/discordgo"
	"github.com/mvierow/clubbot/cache"
)

// SendMessage sends $content to $channelID, splitting it into multiple
// messages when it exceeds the discord message limit
func SendMessage(channelID string, content string) (messages []*discordgo.Message, err error) {
	for _, page := range pageContent(content, 2000) {
		message, err := cache.GetSession().ChannelMessageSend(channelID, page)
		if err != nil {
			return messages, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// SendEmbed sends an embed to $channelID
func SendEmbed(channelID string, embed *discordgo.MessageEmbed) (messages []*discordgo.Message, err error) {
	message, err := cache.GetSession().ChannelMessageSendEmbed(channelID, TruncateEmbed(embed))
	if err != nil {
		return nil, err
	}
	return []*discordgo.Message{message}, nil
}

// EditMessage replaces the content of $messageID
func EditMessage(channelID string, messageID string, content string) (message *discordgo.Message, err error) {
	return cache.GetSession().ChannelMessageEdit(channelID, messageID, content)
}

// EditEmbed replaces the embed of $messageID
func EditEmbed(channelID string, messageID string, embed *discordgo.MessageEmbed) (message *discordgo.Message, err error) {
	return cache.GetSession().ChannelMessageEditEmbed(channelID, messageID, TruncateEmbed(embed))
}

// TruncateEmbed enforces the discord embed limits
func TruncateEmbed(embed *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	if embed.Title != "" && len(embed.Title) > 256 {
		embed.Title = embed.Title[0:255]
	}
	if embed.Description != "" && len(embed.Description) > 2048 {
		embed.Description = embed.Description[0:2047]
	}
	if embed.Footer != nil && embed.Footer.Text != "" && len(embed.Footer.Text) > 2048 {
		embed.Footer.Text = embed.Footer.Text[0:2047]
	}
	if len(embed.Fields) > 25 {
		embed.Fields = embed.Fields[0:25]
	}
	for _, field := range embed.Fields {
		if len(field.Name) > 256 {
			field.Name = field.Name[0:255]
		}
		if len(field.Value) > 1024 {
			field.Value = field.Value[0:1023]
		}
	}
	return embed
}

func pageContent(content string, limit int) (pages []string) {
	for len(content) > limit {
		pages = append(pages, content[0:limit])
		content = content[limit:]
	}
	if len(content) > 0 {
		pages = append(pages, content)
	}
	return pages
}
