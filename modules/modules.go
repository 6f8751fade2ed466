package modules

import (
	"github.com/mvierow/clubbot/modules/plugins"
)

var (
	pluginCache         map[string]*Plugin
	extendedPluginCache map[string]*ExtendedPlugin

	PluginList = []Plugin{
		&plugins.About{},
		&plugins.Ping{},
		&plugins.MusicClub{},
	}

	PluginExtendedList = []ExtendedPlugin{
		&plugins.BookClub{},
	}
)
