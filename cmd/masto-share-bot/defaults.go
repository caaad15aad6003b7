package main

import (
	"github.com/spf13/viper"
)

func initViperDefaults() {
	viper.SetDefault("state_dir", "~/.masto-share-bot")

	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
}
