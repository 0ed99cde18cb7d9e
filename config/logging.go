package config

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging sets up the standard logrus logger: JSON in production, text otherwise.
// An unknown level falls back to info.
func ConfigureLogging(server ServerConfig, out io.Writer) {
	if out != nil {
		log.SetOutput(out)
	}

	if server.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(server.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
