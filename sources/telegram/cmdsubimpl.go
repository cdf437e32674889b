package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"autofilter/sources/deduplication"
	"autofilter/sources/features"
	"autofilter/sources/persistence/entities"
	"autofilter/sources/platform"
	"autofilter/sources/repository"
	"autofilter/sources/texting"
	"autofilter/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SearchCommand is the single metered entry point for both plain and NLP
// queries. Gate order matters: cheap throttle first, feature gates next,
// the quota increment last so a denied request never burns quota.
func (x *TelegramHandler) SearchCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message, query string, nlp bool) {
	if !x.throttler.IsAllowed(user.UserID) {
		log.W("User exceeded rate throttler")
		x.diplomat.Reply(log, msg, MsgThrottleExceeded)
		return
	}

	mode := "keyword"
	if nlp {
		mode = "nlp"

		if !x.features.IsEnabledDefault(features.FeatureNLPSearch, true) {
			x.diplomat.Reply(log, msg, MsgNLPDisabled)
			return
		}
		if !x.meter.CanUseFeature(log, user.UserID, entities.FeatureNLPSearch) {
			x.metrics.RecordFeatureDenial(entities.FeatureNLPSearch)
			x.diplomat.Reply(log, msg, MsgNLPNotAllowed)
			return
		}
	}

	allowed, err := x.meter.IncrementUsage(log, user.UserID)
	if err != nil {
		log.E("Quota check failed", tracing.InnerError, err)
		x.diplomat.Reply(log, msg, MsgInternalError)
		return
	}
	if !allowed {
		x.metrics.RecordQuotaDenial()
		x.diplomat.Reply(log, msg, MsgQuotaExceeded)
		return
	}

	started := time.Now()
	var files []*entities.File
	if nlp {
		files, err = x.engine.NLPSearch(log, query, 0)
	} else {
		files, err = x.engine.Search(log, query, 0)
	}
	x.metrics.RecordSearchDuration(time.Since(started), mode)

	if err != nil {
		log.E("Search failed", tracing.InnerError, err)
		x.metrics.RecordSearch(mode, "error")
		x.diplomat.Reply(log, msg, MsgInternalError)
		return
	}

	if len(files) == 0 {
		x.metrics.RecordSearch(mode, "empty")
	} else {
		x.metrics.RecordSearch(mode, "success")
	}
	x.diplomat.Reply(log, msg, texting.FileList(files))
}

func (x *TelegramHandler) GetCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message, fileID string) {
	if !x.throttler.IsAllowed(user.UserID) {
		x.diplomat.Reply(log, msg, MsgThrottleExceeded)
		return
	}

	allowed, err := x.meter.IncrementUsage(log, user.UserID)
	if err != nil {
		log.E("Quota check failed", tracing.InnerError, err)
		x.diplomat.Reply(log, msg, MsgInternalError)
		return
	}
	if !allowed {
		x.metrics.RecordQuotaDenial()
		x.diplomat.Reply(log, msg, MsgQuotaExceeded)
		return
	}

	file, err := x.engine.Get(log, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			x.diplomat.Reply(log, msg, MsgFileNotFound)
			return
		}
		log.E("File lookup failed", tracing.InnerError, err)
		x.diplomat.Reply(log, msg, MsgInternalError)
		return
	}

	if err := x.engine.RecordAccess(log, file.FileID, user.UserID); err != nil {
		log.W("Failed to record file access", tracing.InnerError, err)
	}

	x.diplomat.Reply(log, msg, texting.FileCard(file))
}

func (x *TelegramHandler) RecommendCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message, fileID string) {
	if !x.features.IsEnabledDefault(features.FeatureRecommendations, true) {
		x.diplomat.Reply(log, msg, MsgUnknownCommand)
		return
	}

	var files []*entities.File
	var err error
	if fileID == "" {
		files, err = x.engine.Popular(log, 0)
	} else {
		files, err = x.engine.SimilarTo(log, fileID, 0)
	}

	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			x.diplomat.Reply(log, msg, MsgFileNotFound)
			return
		}
		log.E("Recommendation failed", tracing.InnerError, err)
		x.diplomat.Reply(log, msg, MsgInternalError)
		return
	}

	x.diplomat.Reply(log, msg, texting.FileList(files))
}

func (x *TelegramHandler) PlanCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message) {
	assignment, err := x.meter.GetUserTier(log, user.UserID)
	if err != nil {
		log.E("Failed to resolve user tier", tracing.InnerError, err)
		x.diplomat.Reply(log, msg, MsgInternalError)
		return
	}

	tier, err := x.meter.GetTier(log, assignment.Tier)
	if err != nil {
		log.W("Failed to load tier definition", tracing.InnerError, err, tracing.Tier, assignment.Tier)
		tier = nil
	}

	x.diplomat.Reply(log, msg, texting.PlanStatus(assignment, tier))
}

func (x *TelegramHandler) TiersCommand(log *tracing.Logger, user *entities.User, msg *tgbotapi.Message) {
	tiers, err := x.meter.GetAllTiers(log)
	if err != nil {
		log.E("Failed to list tiers", tracing.InnerError, err)
		x.diplomat.Reply(log, msg, MsgInternalError)
		return
	}

	cards := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		cards = append(cards, texting.TierCard(tier))
	}
	x.diplomat.Reply(log, msg, strings.Join(cards, "\n"))
}

func (x *TelegramHandler) TierCommandSet(log *tracing.Logger, msg *tgbotapi.Message, userID int64, tierName string, days int) {
	ok, message := x.meter.SetUserTier(log, userID, tierName, days)
	if ok {
		x.metrics.RecordTierAssignment(tierName)
	}
	x.diplomat.Reply(log, msg, message)
}

func (x *TelegramHandler) TierCommandList(log *tracing.Logger, msg *tgbotapi.Message, tierName string) {
	assignments, err := x.meter.GetUsersByTier(log, tierName)
	if err != nil {
		log.E("Failed to list tier users", tracing.InnerError, err)
		x.diplomat.Reply(log, msg, MsgInternalError)
		return
	}

	if len(assignments) == 0 {
		x.diplomat.Reply(log, msg, fmt.Sprintf("No users on tier '%s'.", tierName))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Users on '%s' (%d):\n", tierName, len(assignments))
	for _, assignment := range assignments {
		if assignment.Expiry != nil {
			fmt.Fprintf(&b, "• %d — until %s\n", assignment.UserID, assignment.Expiry.Format(platform.DayFormat))
		} else {
			fmt.Fprintf(&b, "• %d — permanent\n", assignment.UserID)
		}
	}
	x.diplomat.Reply(log, msg, b.String())
}

func (x *TelegramHandler) TierCommandStats(log *tracing.Logger, msg *tgbotapi.Message) {
	stats, err := x.meter.GetTierStats(log)
	if err != nil {
		log.E("Failed to load tier stats", tracing.InnerError, err)
		x.diplomat.Reply(log, msg, MsgInternalError)
		return
	}

	if len(stats) == 0 {
		x.diplomat.Reply(log, msg, "No stored tier assignments yet.")
		return
	}

	var b strings.Builder
	b.WriteString("Users per tier:\n")
	for _, stat := range stats {
		fmt.Fprintf(&b, "• %s: %s\n", stat.Tier, texting.Numberify(stat.Count))
	}
	x.diplomat.Reply(log, msg, b.String())
}

func (x *TelegramHandler) TierCommandUpdate(log *tracing.Logger, msg *tgbotapi.Message, tierName string, rawConfig string) {
	var patch map[string]any
	if err := json.Unmarshal([]byte(rawConfig), &patch); err != nil {
		x.diplomat.Reply(log, msg, "Configuration must be a JSON object, e.g. {\"max_requests_per_day\": 100}.")
		return
	}

	if err := x.meter.UpdateTierConfig(log, tierName, patch); err != nil {
		switch {
		case errors.Is(err, repository.ErrTierNotFound):
			x.diplomat.Reply(log, msg, fmt.Sprintf("Tier '%s' does not exist.", tierName))
		case errors.Is(err, repository.ErrEmptyPatch):
			x.diplomat.Reply(log, msg, "Nothing to update: no known tier fields in the configuration.")
		default:
			log.E("Failed to update tier", tracing.InnerError, err)
			x.diplomat.Reply(log, msg, MsgInternalError)
		}
		return
	}

	x.diplomat.Reply(log, msg, fmt.Sprintf("Tier '%s' updated.", tierName))
}

func (x *TelegramHandler) TierCommandDelete(log *tracing.Logger, msg *tgbotapi.Message, tierName string) {
	if err := x.meter.DeleteTier(log, tierName); err != nil {
		switch {
		case errors.Is(err, repository.ErrTierReserved):
			x.diplomat.Reply(log, msg, "The free tier is reserved and cannot be deleted.")
		case errors.Is(err, repository.ErrTierNotFound):
			x.diplomat.Reply(log, msg, fmt.Sprintf("Tier '%s' does not exist.", tierName))
		default:
			log.E("Failed to delete tier", tracing.InnerError, err)
			x.diplomat.Reply(log, msg, MsgInternalError)
		}
		return
	}

	x.diplomat.Reply(log, msg, fmt.Sprintf("Tier '%s' deleted. Users on it fall back to free on next request.", tierName))
}

func (x *TelegramHandler) FeatureCommandSet(log *tracing.Logger, msg *tgbotapi.Message, userID int64, feature string, allowed bool) {
	if err := x.meter.OverrideFeature(log, userID, feature, allowed); err != nil {
		log.E("Failed to set feature override", tracing.InnerError, err)
		x.diplomat.Reply(log, msg, MsgInternalError)
		return
	}

	state := "disabled"
	if allowed {
		state = "enabled"
	}
	x.diplomat.Reply(log, msg, fmt.Sprintf("Feature '%s' %s for user %d.", feature, state, userID))
}

func (x *TelegramHandler) FeatureCommandClear(log *tracing.Logger, msg *tgbotapi.Message, userID int64, feature string) {
	if err := x.meter.ClearFeatureOverride(log, userID, feature); err != nil {
		log.E("Failed to clear feature override", tracing.InnerError, err)
		x.diplomat.Reply(log, msg, MsgInternalError)
		return
	}

	x.diplomat.Reply(log, msg, fmt.Sprintf("Feature '%s' for user %d follows the tier default again.", feature, userID))
}

// DupesCommandFind starts the sweep in the background so the poller's
// update loop keeps handling messages while it runs. The Redis lock in
// the runner guards against overlapping sweeps.
func (x *TelegramHandler) DupesCommandFind(log *tracing.Logger, msg *tgbotapi.Message, threshold float64, limit int) {
	x.diplomat.Reply(log, msg, MsgDetectionStarted)

	go func() {
		total, err := x.runner.Run(log, threshold, limit)
		if err != nil {
			if errors.Is(err, deduplication.ErrDetectionBusy) {
				x.diplomat.Reply(log, msg, MsgDetectionBusy)
				return
			}
			log.E("Detection sweep failed", tracing.InnerError, err)
			x.diplomat.Reply(log, msg, MsgInternalError)
			return
		}

		x.diplomat.Reply(log, msg, fmt.Sprintf("Sweep finished: %d duplicate groups on record. /dupes list to review.", total))
	}()
}

func (x *TelegramHandler) DupesCommandList(log *tracing.Logger, msg *tgbotapi.Message, status string) {
	groups, err := x.detector.GetAllDuplicates(log, status, 0)
	if err != nil {
		log.E("Failed to list duplicates", tracing.InnerError, err)
		x.diplomat.Reply(log, msg, MsgInternalError)
		return
	}

	x.diplomat.Reply(log, msg, texting.DuplicateList(groups))
}

func (x *TelegramHandler) DupesCommandResolve(log *tracing.Logger, msg *tgbotapi.Message, duplicateID string) {
	if err := x.detector.MarkAsResolved(log, duplicateID); err != nil {
		if errors.Is(err, repository.ErrDuplicateNotFound) {
			x.diplomat.Reply(log, msg, MsgDuplicateMissing)
			return
		}
		log.E("Failed to resolve duplicate", tracing.InnerError, err)
		x.diplomat.Reply(log, msg, MsgInternalError)
		return
	}

	x.diplomat.Reply(log, msg, fmt.Sprintf("Group %s marked as resolved.", duplicateID))
}

func (x *TelegramHandler) DupesCommandDelete(log *tracing.Logger, msg *tgbotapi.Message, fileID string) {
	flagged, err := x.detector.DeleteDuplicate(log, fileID)
	if err != nil {
		log.E("Failed to flag duplicate file", tracing.InnerError, err)
		x.diplomat.Reply(log, msg, MsgInternalError)
		return
	}

	if flagged == 0 {
		x.diplomat.Reply(log, msg, "That file is not listed in any duplicate group.")
		return
	}
	x.diplomat.Reply(log, msg, fmt.Sprintf("Flagged %d duplicate entries as deleted.", flagged))
}

func (x *TelegramHandler) ExportCommand(log *tracing.Logger, msg *tgbotapi.Message, format string) {
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), time.Minute)
	defer cancel()

	payload, name, err := x.engine.Export(ctx, log, format)
	if err != nil {
		log.E("Catalog export failed", tracing.InnerError, err)
		x.diplomat.Reply(log, msg, "Export failed. Supported formats: json, csv.")
		return
	}

	x.diplomat.SendDocument(log, msg, name, payload)
}
