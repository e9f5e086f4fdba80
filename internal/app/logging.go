package app

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

// SetupLogger настраивает формат и уровень глобального логгера. Ошибка
// означает неизвестный уровень, при этом уровень всё равно выставлен в info.
func SetupLogger(level string) error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	lvl, err := ParseLogLevel(level)
	log.SetLevel(lvl)
	return err
}

// ParseLogLevel разбирает LOG_LEVEL; пустое или неизвестное значение даёт info.
func ParseLogLevel(level string) (log.Level, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel, err
	}
	return lvl, nil
}
