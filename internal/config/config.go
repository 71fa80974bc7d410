// Package config defines the server's runtime configuration and binds
// it from CLI flags, environment variables, and an optional .env file —
// spec §6 "Configuration".
package config

import (
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults from spec §6.
const (
	DefaultHost                       = "0.0.0.0"
	DefaultMatchmakerPort             = 9437
	DefaultGamePort                   = 9438
	DefaultLobbySize                  = 3
	DefaultHeartbeatTimeoutSecs       = 30
	DefaultNumTiles                   = 64
	DefaultColourSelectionTimeoutSecs = 60
)

// Config is the resolved runtime configuration for one process running
// both servers and both watchdogs.
type Config struct {
	Host                   string
	MatchmakerPort         int
	GamePort               int
	LobbySize              int
	HeartbeatTimeout       time.Duration
	NumTiles               int
	ColourSelectionTimeout time.Duration
}

// BindFlags registers the configuration flags on fs. Call before
// fs.Parse.
func BindFlags(fs *flag.FlagSet) {
	fs.String("host", DefaultHost, "bind host for both servers")
	fs.Int("matchmaker-port", DefaultMatchmakerPort, "matchmaker server port")
	fs.Int("game-port", DefaultGamePort, "game server port")
	fs.Int("lobby-size", DefaultLobbySize, "players required to form a session")
	fs.Int("heartbeat-timeout", DefaultHeartbeatTimeoutSecs, "matchmaker heartbeat timeout, seconds")
	fs.Int("num-tiles", DefaultNumTiles, "tiles on the board")
	fs.Int("colour-selection-timeout", DefaultColourSelectionTimeoutSecs, "colour selection timeout, seconds")
}

// Load builds a Config from viper, which has already had fs bound via
// viper.BindPFlags, environment variables (DRAWCONQUER_ prefix), and
// an optional .env file loaded with godotenv.
func Load(v *viper.Viper) Config {
	// A missing .env file is not an error: most deployments configure
	// via real environment variables or flags instead.
	_ = godotenv.Load()

	return Config{
		Host:                   v.GetString("host"),
		MatchmakerPort:         v.GetInt("matchmaker-port"),
		GamePort:               v.GetInt("game-port"),
		LobbySize:              v.GetInt("lobby-size"),
		HeartbeatTimeout:       time.Duration(v.GetInt("heartbeat-timeout")) * time.Second,
		NumTiles:               v.GetInt("num-tiles"),
		ColourSelectionTimeout: time.Duration(v.GetInt("colour-selection-timeout")) * time.Second,
	}
}
