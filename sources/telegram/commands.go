package telegram

import (
	"strings"

	"autofilter/sources/persistence/entities"
	"autofilter/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (x *TelegramHandler) HandleStartCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message) {
	x.diplomat.Reply(log, msg, MsgStart)
}

func (x *TelegramHandler) HandleHelpCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message) {
	x.diplomat.Reply(log, msg, MsgHelp)
}

func (x *TelegramHandler) HandleSearchCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message) {
	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		x.diplomat.Reply(log, msg, MsgEmptyQuery)
		return
	}
	x.SearchCommand(log, user, msg, query, false)
}

func (x *TelegramHandler) HandleNLPCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message) {
	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		x.diplomat.Reply(log, msg, MsgEmptyQuery)
		return
	}
	x.SearchCommand(log, user, msg, query, true)
}

func (x *TelegramHandler) HandleGetCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message) {
	var cmd GetCmd
	if _, err := x.ParseKongCommand(log, msg, &cmd); err != nil {
		x.diplomat.Reply(log, msg, "Usage: /get <file id>")
		return
	}
	x.GetCommand(log, user, msg, cmd.FileID)
}

func (x *TelegramHandler) HandleRecommendCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message) {
	fileID := strings.TrimSpace(msg.CommandArguments())
	x.RecommendCommand(log, user, msg, fileID)
}

func (x *TelegramHandler) HandlePlanCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message) {
	x.PlanCommand(log, user, msg)
}

func (x *TelegramHandler) HandleTiersCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message) {
	x.TiersCommand(log, user, msg)
}

func (x *TelegramHandler) HandleTierCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message) {
	if !x.users.IsUserHasRight(log, user, entities.UserRightManageTiers) {
		x.diplomat.Reply(log, msg, MsgNoAccess)
		return
	}

	var cmd TierCmd
	ctx, err := x.ParseKongCommand(log, msg, &cmd)
	if err != nil {
		x.diplomat.Reply(log, msg, "Usage: /tier set <user id> <tier> [days] | list <tier> | stats | update <tier> <json> | delete <tier>")
		return
	}

	switch command(ctx.Command()) {
	case "set":
		x.TierCommandSet(log, msg, cmd.Set.UserID, cmd.Set.Tier, cmd.Set.Days)
	case "list":
		x.TierCommandList(log, msg, cmd.List.Tier)
	case "stats":
		x.TierCommandStats(log, msg)
	case "update":
		x.TierCommandUpdate(log, msg, cmd.Update.Tier, cmd.Update.Config)
	case "delete":
		x.TierCommandDelete(log, msg, cmd.Delete.Tier)
	default:
		log.W("Unknown tier subcommand", tracing.InternalCommand, ctx.Command())
		x.diplomat.Reply(log, msg, MsgUnknownCommand)
	}
}

func (x *TelegramHandler) HandleFeatureCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message) {
	if !x.users.IsUserHasRight(log, user, entities.UserRightManageTiers) {
		x.diplomat.Reply(log, msg, MsgNoAccess)
		return
	}

	var cmd FeatureCmd
	ctx, err := x.ParseKongCommand(log, msg, &cmd)
	if err != nil {
		x.diplomat.Reply(log, msg, "Usage: /feature set <user id> <feature> <enable|disable> | clear <user id> <feature>")
		return
	}

	switch command(ctx.Command()) {
	case "set":
		x.FeatureCommandSet(log, msg, cmd.Set.UserID, cmd.Set.Feature, x.ParseBooleanArgument(cmd.Set.Action))
	case "clear":
		x.FeatureCommandClear(log, msg, cmd.Clear.UserID, cmd.Clear.Feature)
	default:
		log.W("Unknown feature subcommand", tracing.InternalCommand, ctx.Command())
		x.diplomat.Reply(log, msg, MsgUnknownCommand)
	}
}

func (x *TelegramHandler) HandleDupesCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message) {
	if !x.users.IsUserHasRight(log, user, entities.UserRightManageDuplicates) {
		x.diplomat.Reply(log, msg, MsgNoAccess)
		return
	}

	var cmd DupesCmd
	ctx, err := x.ParseKongCommand(log, msg, &cmd)
	if err != nil {
		x.diplomat.Reply(log, msg, "Usage: /dupes find [threshold] [limit] | list [status] | resolve <id> | delete <file id>")
		return
	}

	switch command(ctx.Command()) {
	case "find":
		x.DupesCommandFind(log, msg, cmd.Find.Threshold, cmd.Find.Limit)
	case "list":
		x.DupesCommandList(log, msg, cmd.List.Status)
	case "resolve":
		x.DupesCommandResolve(log, msg, cmd.Resolve.DuplicateID)
	case "delete":
		x.DupesCommandDelete(log, msg, cmd.Delete.FileID)
	default:
		log.W("Unknown dupes subcommand", tracing.InternalCommand, ctx.Command())
		x.diplomat.Reply(log, msg, MsgUnknownCommand)
	}
}

func (x *TelegramHandler) HandleExportCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message) {
	// Catalog exports are open to tiers carrying batch_requests; the
	// export right bypasses the tier check for operators.
	if !x.users.IsUserHasRight(log, user, entities.UserRightExportCatalog) &&
		!x.meter.CanUseFeature(log, user.UserID, entities.FeatureBatchRequests) {
		x.metrics.RecordFeatureDenial(entities.FeatureBatchRequests)
		x.diplomat.Reply(log, msg, MsgExportNotAllowed)
		return
	}

	format := strings.TrimSpace(msg.CommandArguments())
	x.ExportCommand(log, msg, format)
}

// command strips kong's positional placeholders, leaving the verb.
func command(kongCommand string) string {
	if i := strings.IndexByte(kongCommand, ' '); i >= 0 {
		return kongCommand[:i]
	}
	return kongCommand
}
