package helpers

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mvierow/clubbot/cache"
	"github.com/pkg/errors"
)

var botAdmins []string

// LoadBotAdmins reads the bot admin ids from the config
func LoadBotAdmins() {
	botAdmins = nil
	children, err := GetConfig().Path("discord.admins").Children()
	if err != nil {
		return
	}
	for _, child := range children {
		botAdmins = append(botAdmins, child.Data().(string))
	}
}

// IsBotAdmin checks if $id is in $botAdmins
func IsBotAdmin(id string) bool {
	for _, s := range botAdmins {
		if s == id {
			return true
		}
	}

	return false
}

func IsAdmin(msg *discordgo.Message) bool {
	channel, e := cache.GetSession().Channel(msg.ChannelID)
	if e != nil {
		return false
	}

	guild, e := cache.GetSession().Guild(channel.GuildID)
	if e != nil {
		return false
	}

	if msg.Author.ID == guild.OwnerID || IsBotAdmin(msg.Author.ID) {
		return true
	}

	guildMember, e := cache.GetSession().GuildMember(guild.ID, msg.Author.ID)
	if e != nil {
		return false
	}
	// Check if role may manage server
	for _, role := range guild.Roles {
		for _, userRole := range guildMember.Roles {
			if userRole == role.ID && role.Permissions&discordgo.PermissionManageServer == discordgo.PermissionManageServer {
				return true
			}
		}
	}

	return false
}

// RequireAdmin only calls $cb if the author is an admin or has MANAGE_SERVER permission
func RequireAdmin(msg *discordgo.Message, cb Callback) {
	if !IsAdmin(msg) {
		cache.GetSession().ChannelMessageSend(msg.ChannelID, GetText("admin.no_permission"))
		return
	}

	cb()
}

// GetGuildRoleByName resolves a role by name or id, case insensitive
func GetGuildRoleByName(guildID string, roleName string) (*discordgo.Role, error) {
	guild, err := cache.GetSession().State.Guild(guildID)
	if err != nil {
		guild, err = cache.GetSession().Guild(guildID)
		if err != nil {
			return nil, err
		}
	}

	for _, role := range guild.Roles {
		if role.ID == roleName || strings.EqualFold(role.Name, roleName) {
			return role, nil
		}
	}

	return nil, errors.New("role not found")
}

// GuildMembersWithRole returns the user ids of every non-bot member
// carrying the role. Pages through the full member list, the state
// cache misses members on large guilds.
func GuildMembersWithRole(guildID string, roleID string) (userIDs []string, err error) {
	after := ""
	for {
		members, err := cache.GetSession().GuildMembers(guildID, after, 1000)
		if err != nil {
			return nil, err
		}
		if len(members) <= 0 {
			break
		}

		for _, member := range members {
			after = member.User.ID
			if member.User.Bot {
				continue
			}
			for _, memberRole := range member.Roles {
				if memberRole == roleID {
					userIDs = append(userIDs, member.User.ID)
					break
				}
			}
		}

		if len(members) < 1000 {
			break
		}
	}

	return userIDs, nil
}

// GetUserUsername resolves a user id to a username, falls back to the id
func GetUserUsername(userID string) string {
	user, err := cache.GetSession().User(userID)
	if err != nil {
		return userID
	}
	return user.Username
}

func ConfirmEmbed(channelID string, author *discordgo.User, confirmMessageText string, confirmEmojiID string, abortEmojiID string) bool {
	// send embed asking the user to confirm
	confirmMessage, err := cache.GetSession().ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       GetTextF("bot.embeds.please-confirm-title", author.Username),
		Description: confirmMessageText,
	})
	if err != nil {
		cache.GetSession().ChannelMessageSend(channelID, GetTextF("bot.errors.general", err.Error()))
		return false
	}

	// delete embed after everything is done
	defer cache.GetSession().ChannelMessageDelete(confirmMessage.ChannelID, confirmMessage.ID)

	// add default reactions to embed
	cache.GetSession().MessageReactionAdd(confirmMessage.ChannelID, confirmMessage.ID, confirmEmojiID)
	cache.GetSession().MessageReactionAdd(confirmMessage.ChannelID, confirmMessage.ID, abortEmojiID)

	// check every second if a reaction has been clicked
	for i := 0; i < 60; i++ {
		confirms, _ := cache.GetSession().MessageReactions(confirmMessage.ChannelID, confirmMessage.ID, confirmEmojiID, 100)
		for _, confirm := range confirms {
			if confirm.ID == author.ID {
				return true
			}
		}
		aborts, _ := cache.GetSession().MessageReactions(confirmMessage.ChannelID, confirmMessage.ID, abortEmojiID, 100)
		for _, abort := range aborts {
			if abort.ID == author.ID {
				return false
			}
		}

		time.Sleep(1 * time.Second)
	}

	return false
}
