package bot

import (
	"fmt"

	"log/slog"

	"github.com/xiniluca/skillswap/core/logger"
	"github.com/xiniluca/skillswap/internal/models"
	"github.com/xiniluca/skillswap/internal/session"

	tele "gopkg.in/telebot.v4"
)

// outbound is the slice of the bot API needed to message users outside the
// current update.
type outbound interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// notify delivers a markdown message to another user's chat. Delivery
// failures (user blocked the bot, chat gone) are logged and swallowed; the
// initiating flow already committed its state change.
func (a *App) notify(b outbound, telegramID int64, text string, markup ...*tele.ReplyMarkup) {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	if _, err := b.Send(&tele.User{ID: telegramID}, text, opts); err != nil {
		logger.TG.Warn("notification dropped",
			slog.String("event", "notify.drop"),
			slog.Int64("user_id", telegramID),
			slog.String("err", err.Error()),
		)
	}
}

// forwardFile re-sends a collected requirement file to the seller with an
// order caption. Same swallow-and-log policy as notify.
func (a *App) forwardFile(b outbound, telegramID int64, f session.FileRef, orderID int64, buyerName string) {
	caption := fmt.Sprintf("📎 *File from Order #%d*\n👤 Buyer: %s\n📄 File: %s", orderID, buyerName, f.FileName)

	var media interface{}
	switch models.FileKind(f.FileType) {
	case models.FilePhoto:
		media = &tele.Photo{File: tele.File{FileID: f.FileID}, Caption: caption}
	case models.FileVideo:
		media = &tele.Video{File: tele.File{FileID: f.FileID}, FileName: f.FileName, Caption: caption}
	default:
		media = &tele.Document{File: tele.File{FileID: f.FileID}, FileName: f.FileName, Caption: caption}
	}

	if _, err := b.Send(&tele.User{ID: telegramID}, media, &tele.SendOptions{ParseMode: tele.ModeMarkdown}); err != nil {
		logger.TG.Warn("file forward dropped",
			slog.String("event", "notify.file_drop"),
			slog.Int64("user_id", telegramID),
			slog.Int64("order_id", orderID),
			slog.String("err", err.Error()),
		)
	}
}
