package telegram

import (
	"autofilter/sources/configuration"
	"autofilter/sources/metrics"
	"autofilter/sources/texting/transform"
	"autofilter/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const defaultChunkSize = 4096

// Diplomat owns all outgoing traffic. Long texts are chunked to the
// Telegram message limit; every send outcome lands in metrics.
type Diplomat struct {
	bot     *tgbotapi.BotAPI
	config  *configuration.Config
	metrics *metrics.MetricsService
}

func NewDiplomat(bot *tgbotapi.BotAPI, config *configuration.Config, metrics *metrics.MetricsService) *Diplomat {
	return &Diplomat{bot: bot, config: config, metrics: metrics}
}

func (x *Diplomat) chunkSize() int {
	if x.config.Telegram.DiplomatChunkSize > 0 {
		return x.config.Telegram.DiplomatChunkSize
	}
	return defaultChunkSize
}

func (x *Diplomat) Reply(log *tracing.Logger, msg *tgbotapi.Message, text string) {
	defer tracing.ProfilePoint(log, "Diplomat reply completed", "diplomat.reply")()

	for _, chunk := range transform.Chunks(text, x.chunkSize()) {
		chattable := tgbotapi.NewMessage(msg.Chat.ID, chunk)
		chattable.ReplyToMessageID = msg.MessageID

		if _, err := x.bot.Send(chattable); err != nil {
			log.E("Message chunk sending error", tracing.InnerError, err)
			x.metrics.RecordMessageSent("error")
			return
		}
		x.metrics.RecordMessageSent("success")
	}
}

func (x *Diplomat) SendText(log *tracing.Logger, chatID int64, text string) error {
	defer tracing.ProfilePoint(log, "Diplomat send text completed", "diplomat.send_text")()

	for _, chunk := range transform.Chunks(text, x.chunkSize()) {
		msg := tgbotapi.NewMessage(chatID, chunk)

		if _, err := x.bot.Send(msg); err != nil {
			log.E("Message chunk sending error", tracing.InnerError, err)
			x.metrics.RecordMessageSent("error")
			return err
		}
		x.metrics.RecordMessageSent("success")
	}
	return nil
}

// SendDocument delivers an in-memory file, used by the catalog export.
func (x *Diplomat) SendDocument(log *tracing.Logger, msg *tgbotapi.Message, name string, payload []byte) {
	defer tracing.ProfilePoint(log, "Diplomat send document completed", "diplomat.send_document")()

	document := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{Name: name, Bytes: payload})
	document.ReplyToMessageID = msg.MessageID

	if _, err := x.bot.Send(document); err != nil {
		log.E("Document sending error", tracing.InnerError, err)
		x.metrics.RecordMessageSent("error")
		return
	}
	x.metrics.RecordMessageSent("success")
}
