package telegram

type TierCmd struct {
	Set struct {
		UserID int64  `arg:"" name:"user-id" help:"Telegram user id"`
		Tier   string `arg:"" help:"Tier name"`
		Days   int    `arg:"" optional:"" help:"Duration in days (omit for permanent)"`
	} `cmd:"" help:"Assign a tier to a user"`

	List struct {
		Tier string `arg:"" help:"Tier name"`
	} `cmd:"" help:"List users assigned to a tier"`

	Stats struct {
	} `cmd:"" help:"Show user counts per tier"`

	Update struct {
		Tier   string `arg:"" help:"Tier name"`
		Config string `arg:"" help:"Partial tier configuration (JSON)"`
	} `cmd:"" help:"Update tier limits"`

	Delete struct {
		Tier string `arg:"" help:"Tier name"`
	} `cmd:"" help:"Delete a custom tier (free is reserved)"`
}

type FeatureCmd struct {
	Set struct {
		UserID  int64  `arg:"" name:"user-id" help:"Telegram user id"`
		Feature string `arg:"" help:"Feature name"`
		Action  string `arg:"" enum:"enable,disable,on,off,true,false,1,0" help:"Grant or revoke (enable/disable/on/off/true/false/1/0)"`
	} `cmd:"" help:"Override a feature for one user"`

	Clear struct {
		UserID  int64  `arg:"" name:"user-id" help:"Telegram user id"`
		Feature string `arg:"" help:"Feature name"`
	} `cmd:"" help:"Remove a per-user feature override"`
}

type DupesCmd struct {
	Find struct {
		Threshold float64 `arg:"" optional:"" help:"Similarity threshold (0..1)"`
		Limit     int     `arg:"" optional:"" help:"Max groups per strategy"`
	} `cmd:"" help:"Run a duplicate detection sweep"`

	List struct {
		Status string `arg:"" optional:"" default:"unresolved" enum:"unresolved,resolved" help:"Group status filter"`
	} `cmd:"" help:"List detected duplicate groups"`

	Resolve struct {
		DuplicateID string `arg:"" name:"duplicate-id" help:"Group id to mark resolved"`
	} `cmd:"" help:"Mark a duplicate group as resolved"`

	Delete struct {
		FileID string `arg:"" name:"file-id" help:"File id to flag as deleted"`
	} `cmd:"" help:"Flag a file as deleted in all groups"`
}

type GetCmd struct {
	FileID string `arg:"" name:"file-id" help:"File id to fetch"`
}
