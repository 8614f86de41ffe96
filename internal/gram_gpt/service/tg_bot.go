package service

import (
	"context"
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/constant"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/export"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"github.com/go-resty/resty/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxMessageLength is the Telegram limit for one text message.
const maxMessageLength = 4096

// BotAPI is the part of tgbotapi.BotAPI used by the bot.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// TurnService runs turns and serves the history of a chat.
type TurnService interface {
	Submit(ctx context.Context, sessionKey, text string, att *Attachment) (models.Turn, error)
	Exchanges(sessionKey string) []models.Exchange
	Exchange(sessionKey string, index int) (models.Exchange, bool)
	ClearHistory(sessionKey string)
}

// HistoryExporter renders a history item as a document.
type HistoryExporter interface {
	HistoryPDF(item models.Exchange) ([]byte, error)
}

// TgBotServices is the Telegram front-end of the assistant.
type TgBotServices struct {
	Assistant  TurnService     // Конвейер обработки запросов
	Exporter   HistoryExporter // Экспорт истории в PDF
	Bot        BotAPI          // Telegram Bot API instance.
	downloader *resty.Client   // Скачивает фото пользователей с серверов Telegram
}

// NewTgBot creates a new TgBotServices instance with the specified dependencies.
// Arguments:
//   - assistant: the turn pipeline.
//   - exporter: history PDF renderer.
//   - bot: Telegram Bot API instance.
//
// Returns a pointer to a TgBotServices.
func NewTgBot(assistant TurnService, exporter HistoryExporter, bot BotAPI) *TgBotServices {
	return &TgBotServices{
		Assistant:  assistant,
		Exporter:   exporter,
		Bot:        bot,
		downloader: resty.New().SetTimeout(30 * time.Second),
	}
}

// sendMessage sends a message to the specified chat with an optional reply.
// Arguments:
//   - chatID: the ID of the chat to send the message to.
//   - text: the text content of the message.
//   - replyToID: the ID of the message to reply to (0 if no reply).
//
// Returns the sent message and an error if the message fails to send.
func (b *TgBotServices) sendMessage(chatID int64, text string, replyToID int) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyToID != 0 {
		msg.ReplyToMessageID = replyToID
	}
	sent, err := b.Bot.Send(msg)
	if err != nil {
		logrus.WithError(err).Errorf("Failed to send message to chat %d", chatID)
	}
	return sent, err
}

// editMessage replaces the text of a sent message, falling back to a new message when
// there is nothing to edit.
func (b *TgBotServices) editMessage(chatID int64, messageID int, text string) error {
	if messageID == 0 {
		_, err := b.sendMessage(chatID, text, 0)
		return err
	}
	if _, err := b.Bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		logrus.WithError(err).Errorf("Failed to edit message in chat %d", chatID)
		return err
	}
	return nil
}

// UpdateProcessing handles one incoming Telegram update: a command, a text message or a
// photo with an optional caption.
func (b *TgBotServices) UpdateProcessing(ctx context.Context, update *tgbotapi.Update) {
	if update == nil || update.Message == nil {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID
	sessionKey := strconv.FormatInt(chatID, 10)

	var err error
	if msg.IsCommand() {
		logrus.Infof("Command [%s] from chat %d", msg.Command(), chatID)
		switch msg.Command() {
		case constant.COMMAND_START:
			_, err = b.sendMessage(chatID, constant.MSG_WELCOME, 0)
		case constant.COMMAND_CLEAR:
			b.Assistant.ClearHistory(sessionKey)
			_, err = b.sendMessage(chatID, constant.MSG_HISTORY_CLEARED, 0)
		case constant.COMMAND_HISTORY:
			err = b.sendHistory(chatID, sessionKey, msg.CommandArguments())
		default:
			_, err = b.sendMessage(chatID, constant.MSG_WELCOME, msg.MessageID)
		}
	} else {
		err = b.handleTurn(ctx, msg, sessionKey)
	}
	if err != nil {
		logrus.WithError(err).WithField("chat", chatID).Error("Update processing failed")
	}
}

// handleTurn submits the message to the assistant and replies with the model turn.
func (b *TgBotServices) handleTurn(ctx context.Context, msg *tgbotapi.Message, sessionKey string) error {
	chatID := msg.Chat.ID
	text := msg.Text
	fileID, mimeType := "", ""
	switch {
	case len(msg.Photo) > 0:
		// Последний размер самый крупный
		fileID = msg.Photo[len(msg.Photo)-1].FileID
		text = msg.Caption
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		fileID, mimeType = msg.Document.FileID, msg.Document.MimeType
		text = msg.Caption
	}

	if strings.TrimSpace(text) == "" && fileID == "" {
		_, err := b.sendMessage(chatID, constant.MSG_EMPTY_PROMPT, msg.MessageID)
		return err
	}

	thinking, _ := b.sendMessage(chatID, constant.MSG_THINKING, msg.MessageID)

	var att *Attachment
	if fileID != "" {
		body, detected, err := b.downloadFile(ctx, fileID)
		if err != nil {
			logrus.WithError(err).Error("Failed to download photo")
			return b.editMessage(chatID, thinking.MessageID, constant.MSG_ATTACHMENT_ERROR)
		}
		defer body.Close()
		if mimeType == "" {
			mimeType = detected
		}
		att = &Attachment{Reader: body, MimeType: mimeType}
	}

	turn, err := b.Assistant.Submit(ctx, sessionKey, text, att)
	if err != nil {
		return b.editMessage(chatID, thinking.MessageID, UserMessage(err))
	}
	return b.sendTurn(chatID, thinking.MessageID, turn)
}

// sendTurn delivers the parts of a model turn in order. The first text chunk replaces the
// "thinking" message, images go out as photos.
func (b *TgBotServices) sendTurn(chatID int64, thinkingID int, turn models.Turn) error {
	placeholder := thinkingID
	for i, part := range turn.Parts {
		if data, ok := part.InlineData(); ok {
			raw, err := data.Bytes()
			if err != nil {
				logrus.WithError(err).Error("Failed to decode generated image")
				continue
			}
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
				Name:  export.ImageFileName(data.MimeType, strconv.Itoa(i+1)),
				Bytes: raw,
			})
			if _, err = b.Bot.Send(photo); err != nil {
				logrus.WithError(err).Error("Failed to send photo")
				return err
			}
			continue
		}
		for _, chunk := range splitText(part.Text(), maxMessageLength) {
			if placeholder != 0 {
				if err := b.editMessage(chatID, placeholder, chunk); err != nil {
					return err
				}
				placeholder = 0
				continue
			}
			if _, err := b.sendMessage(chatID, chunk, 0); err != nil {
				return err
			}
		}
	}
	if placeholder != 0 {
		// Ответ состоял только из изображений
		return b.editMessage(chatID, placeholder, constant.EMOJI_FRAMED_IMAGE)
	}
	return nil
}

// sendHistory sends a history item as PDF: the one named in args or the latest.
func (b *TgBotServices) sendHistory(chatID int64, sessionKey, args string) error {
	items := b.Assistant.Exchanges(sessionKey)
	if len(items) == 0 {
		_, err := b.sendMessage(chatID, constant.MSG_HISTORY_EMPTY, 0)
		return err
	}
	index := len(items)
	if n, err := strconv.Atoi(strings.TrimSpace(args)); err == nil {
		index = n
	}
	item, ok := b.Assistant.Exchange(sessionKey, index)
	if !ok {
		_, err := b.sendMessage(chatID, constant.MSG_HISTORY_EMPTY, 0)
		return err
	}

	doc, err := b.Exporter.HistoryPDF(item)
	if err != nil {
		logrus.WithError(err).Error("Failed to export history item")
		_, _ = b.sendMessage(chatID, constant.MSG_EXPORT_FAILED, 0)
		return err
	}
	document := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: export.HistoryFileName(item.Index), Bytes: doc})
	document.Caption = constant.EMOJI_PAGE_FACING + " " + export.HistoryFileName(item.Index)
	_, err = b.Bot.Send(document)
	return err
}

// downloadFile opens a Telegram file for reading. The caller closes the body.
func (b *TgBotServices) downloadFile(ctx context.Context, fileID string) (io.ReadCloser, string, error) {
	url, err := b.Bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, "", fmt.Errorf("get file url: %w", err)
	}
	resp, err := b.downloader.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	raw := resp.RawBody()
	if resp.StatusCode() != http.StatusOK {
		raw.Close()
		return nil, "", fmt.Errorf("download file: unexpected status %d", resp.StatusCode())
	}
	return raw, resp.Header().Get("Content-Type"), nil
}

// splitText cuts text into chunks of at most limit runes, preferring line breaks.
func splitText(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	return append(chunks, string(runes))
}
