package gramgpt

import (
	"context"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"time"
)

// updatesRetryDelay is the pause after a failed getUpdates call.
const updatesRetryDelay = 3 * time.Second

// UpdatesFetcher is the long polling call of the Bot API.
type UpdatesFetcher interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// GetUpdatesChan polls for updates until ctx is cancelled, then closes the channel.
func GetUpdatesChan(ctx context.Context, bot UpdatesFetcher, config tgbotapi.UpdateConfig, buffer int) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update, buffer)

	go func() {
		defer close(ch)
		for {
			if ctx.Err() != nil {
				return
			}
			updates, err := bot.GetUpdates(config)
			if err != nil {
				logrus.WithError(err).Warnf("Failed to get updates, retrying in %v...", updatesRetryDelay)
				select {
				case <-ctx.Done():
					return
				case <-time.After(updatesRetryDelay):
				}
				continue
			}

			for _, update := range updates {
				if update.UpdateID < config.Offset {
					continue
				}
				config.Offset = update.UpdateID + 1
				select {
				case ch <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch
}
