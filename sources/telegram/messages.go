package telegram

const (
	MsgStart = "Hi! I index the shared file catalog.\n" +
		"Send me a text to search, or use /help for the full command list."

	MsgHelp = "Commands:\n" +
		"/search <query> — search the catalog\n" +
		"/nlp <query> — natural-language search\n" +
		"/get <file id> — fetch a catalog entry\n" +
		"/recommend [file id] — popular or similar files\n" +
		"/plan — your tier and usage\n" +
		"/tiers — available tiers\n" +
		"\nAdmin:\n" +
		"/tier set|list|stats|update|delete — manage tiers\n" +
		"/feature set|clear — per-user feature overrides\n" +
		"/dupes find|list|resolve|delete — duplicate review\n" +
		"/export [json|csv] — dump the catalog"

	MsgInternalError    = "Something went wrong, try again later."
	MsgUnknownCommand   = "Unknown command. /help lists everything I understand."
	MsgThrottleExceeded = "Slow down a little and try again."
	MsgUserBlocked      = "Your account is deactivated."
	MsgNoAccess         = "You do not have access to this command."
	MsgQuotaExceeded    = "Daily request limit reached. It resets at midnight, or /tiers to upgrade."
	MsgNLPNotAllowed    = "Natural-language search is not included in your plan. See /tiers."
	MsgNLPDisabled      = "Natural-language search is temporarily off."
	MsgEmptyQuery       = "Tell me what to look for, e.g. /search matrix 1999."
	MsgDetectionStarted = "Detection sweep started, I will report back here when it finishes."
	MsgDetectionBusy    = "A detection sweep is already running, try again in a minute."
	MsgExportNotAllowed = "Catalog export is not included in your plan. See /tiers."
	MsgFileNotFound     = "No such file in the catalog."
	MsgDuplicateMissing = "No duplicate group with that id."
)
