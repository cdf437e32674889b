package telegram

import (
	"strings"

	"autofilter/sources/deduplication"
	"autofilter/sources/features"
	"autofilter/sources/metering"
	"autofilter/sources/metrics"
	"autofilter/sources/persistence/entities"
	"autofilter/sources/platform"
	"autofilter/sources/repository"
	"autofilter/sources/search"
	"autofilter/sources/throttler"
	"autofilter/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// replier is the slice of the diplomat the handler sends through.
type replier interface {
	Reply(log *tracing.Logger, msg *tgbotapi.Message, text string)
	SendDocument(log *tracing.Logger, msg *tgbotapi.Message, name string, payload []byte)
}

// sweepRunner is the slice of the detection runner the handler invokes.
type sweepRunner interface {
	Run(log *tracing.Logger, threshold float64, limit int) (int, error)
}

type TelegramHandler struct {
	diplomat  replier
	users     *repository.UsersRepository
	meter     *metering.Meter
	engine    *search.Engine
	detector  *deduplication.Detector
	runner    sweepRunner
	throttler *throttler.Throttler
	features  *features.FeatureManager
	metrics   *metrics.MetricsService
}

func NewTelegramHandler(diplomat *Diplomat, users *repository.UsersRepository, meter *metering.Meter, engine *search.Engine, detector *deduplication.Detector, runner *deduplication.Runner, throttler *throttler.Throttler, fm *features.FeatureManager, metrics *metrics.MetricsService) *TelegramHandler {
	return &TelegramHandler{
		diplomat:  diplomat,
		users:     users,
		meter:     meter,
		engine:    engine,
		detector:  detector,
		runner:    runner,
		throttler: throttler,
		features:  fm,
		metrics:   metrics,
	}
}

func (x *TelegramHandler) HandleMessage(log *tracing.Logger, msg *tgbotapi.Message) error {
	defer tracing.ProfilePoint(log, "Telegram handler message completed", "telegram.handler.message")()
	log.I("Got message")

	user, err := x.user(log, msg)
	if err != nil {
		log.E("Error getting or creating user", tracing.InnerError, err)
		return err
	}

	if !platform.BoolValue(user.IsActive, true) {
		x.diplomat.Reply(log, msg, MsgUserBlocked)
		return nil
	}

	if msg.Sticker != nil {
		log.I("Ignoring sticker message")
		x.metrics.RecordMessageIgnored("sticker")
		return nil
	}

	if msg.IsCommand() {
		log = log.With(tracing.CommandIssued, msg.Command())
		x.metrics.RecordCommandUsed(msg.Command())

		switch msg.Command() {
		case "start":
			x.HandleStartCommand(log, user, msg)
		case "help":
			x.HandleHelpCommand(log, user, msg)
		case "search":
			x.HandleSearchCommand(log, user, msg)
		case "nlp":
			x.HandleNLPCommand(log, user, msg)
		case "get":
			x.HandleGetCommand(log, user, msg)
		case "recommend":
			x.HandleRecommendCommand(log, user, msg)
		case "plan":
			x.HandlePlanCommand(log, user, msg)
		case "tiers":
			x.HandleTiersCommand(log, user, msg)
		case "tier":
			x.HandleTierCommand(log, user, msg)
		case "feature":
			x.HandleFeatureCommand(log, user, msg)
		case "dupes":
			x.HandleDupesCommand(log, user, msg)
		case "export":
			x.HandleExportCommand(log, user, msg)
		default:
			x.diplomat.Reply(log, msg, MsgUnknownCommand)
		}
		return nil
	}

	if !msg.Chat.IsPrivate() {
		log.I("Ignoring non-command group message")
		x.metrics.RecordMessageIgnored("group_text")
		return nil
	}

	if strings.TrimSpace(msg.Text) == "" {
		x.metrics.RecordMessageIgnored("empty")
		return nil
	}

	// Bare text in a private chat is a search.
	x.SearchCommand(log.With(tracing.CommandIssued, "search/direct"), user, msg, msg.Text, false)
	return nil
}

func (x *TelegramHandler) user(log *tracing.Logger, msg *tgbotapi.Message) (*entities.User, error) {
	from := msg.From

	var username, fullname *string
	if from.UserName != "" {
		username = platform.StringPtr(from.UserName)
	}
	if name := strings.TrimSpace(from.FirstName + " " + from.LastName); name != "" {
		fullname = platform.StringPtr(name)
	}

	return x.users.EnsureUser(log, from.ID, username, fullname)
}
