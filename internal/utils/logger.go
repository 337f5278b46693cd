package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// serviceFieldHook stamps every entry with the service name so lines from
// the API, the cron sweep and the CLI can be told apart in one stream.
type serviceFieldHook struct {
	service string
}

func (h *serviceFieldHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *serviceFieldHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok {
		entry.Data["service"] = h.service
	}
	return nil
}

// InitLogger configures Logger from LOG_LEVEL (default info) and LOG_FORMAT
// ("json" or text). Call it once from main.
func InitLogger(service string) {
	Logger.SetOutput(os.Stdout)

	levelName := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if levelName == "" {
		levelName = "info"
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		Logger.Warnf("Invalid LOG_LEVEL %q, defaulting to info", levelName)
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	Logger.ReplaceHooks(logrus.LevelHooks{})
	Logger.AddHook(&serviceFieldHook{service: service})
}
