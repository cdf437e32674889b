package texting

import (
	"fmt"
	"sort"
	"strings"

	"autofilter/sources/persistence/entities"
	"autofilter/sources/texting/transform"
)

const maxNameLen = 64

// TierCard renders one tier definition for the /tiers listing.
func TierCard(tier *entities.Tier) string {
	var b strings.Builder

	fmt.Fprintf(&b, "💠 %s — %s\n", strings.ToUpper(tier.Name), tier.Description)
	fmt.Fprintf(&b, "   Requests per day: %s\n", Limitify(tier.MaxRequestsPerDay))
	fmt.Fprintf(&b, "   Max file size: %s\n", sizeLimit(tier.MaxFileSizeMB))
	fmt.Fprintf(&b, "   Price: %s\n", Currencify(tier.Price))

	enabled := make([]string, 0, len(tier.Features))
	for feature, allowed := range tier.Features {
		if allowed {
			enabled = append(enabled, feature)
		}
	}
	sort.Strings(enabled)
	if len(enabled) > 0 {
		fmt.Fprintf(&b, "   Features: %s\n", strings.Join(enabled, ", "))
	}

	return b.String()
}

// PlanStatus renders the /plan reply for one user.
func PlanStatus(assignment *entities.TierAssignment, tier *entities.Tier) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Your plan: %s\n", strings.ToUpper(assignment.Tier))
	if assignment.Expiry != nil {
		fmt.Fprintf(&b, "Valid until: %s\n", assignment.Expiry.Format("2006-01-02"))
	} else {
		b.WriteString("Valid: permanently\n")
	}

	if tier != nil {
		fmt.Fprintf(&b, "Used today: %s of %s\n", Numberify(int64(assignment.RequestsToday)), Limitify(tier.MaxRequestsPerDay))
	}

	if len(assignment.FeaturesOverride) > 0 {
		overrides := make([]string, 0, len(assignment.FeaturesOverride))
		for feature, allowed := range assignment.FeaturesOverride {
			state := "off"
			if allowed {
				state = "on"
			}
			overrides = append(overrides, fmt.Sprintf("%s=%s", feature, state))
		}
		sort.Strings(overrides)
		fmt.Fprintf(&b, "Personal overrides: %s\n", strings.Join(overrides, ", "))
	}

	return b.String()
}

// FileList renders search results, one numbered line per file.
func FileList(files []*entities.File) string {
	if len(files) == 0 {
		return "Nothing found."
	}

	var b strings.Builder
	for i, file := range files {
		name := transform.SmartTruncate(file.FileName, maxNameLen)
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, name, Sizify(file.Size))
	}
	return b.String()
}

// FileCard renders one catalog entry in full.
func FileCard(file *entities.File) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📄 %s\n", file.FileName)
	fmt.Fprintf(&b, "   Size: %s\n", Sizify(file.Size))
	if file.Type != nil {
		fmt.Fprintf(&b, "   Type: %s\n", *file.Type)
	}
	if file.Year != nil {
		fmt.Fprintf(&b, "   Year: %s\n", *file.Year)
	}
	if file.Genre != nil {
		fmt.Fprintf(&b, "   Genre: %s\n", *file.Genre)
	}
	if file.Caption != nil && *file.Caption != "" {
		fmt.Fprintf(&b, "   %s\n", transform.SmartTruncate(*file.Caption, 256))
	}

	return b.String()
}

// DuplicateCard renders one duplicate group for admin review.
func DuplicateCard(group *entities.DuplicateGroup) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🗂 %s [%s, %s]\n", group.DuplicateID, group.Method, group.Status)
	fmt.Fprintf(&b, "   Original: %s (%s)\n", transform.SmartTruncate(group.OriginalFileName, maxNameLen), Sizify(group.OriginalSize))

	for _, member := range group.Members {
		if member.FileID == group.OriginalFileID {
			continue
		}
		line := fmt.Sprintf("   • %s (%s)", transform.SmartTruncate(member.FileName, maxNameLen), Sizify(member.Size))
		if member.Similarity != nil {
			line += fmt.Sprintf(" ~%s", Percentify(*member.Similarity))
		}
		if member.Deleted {
			line += " [deleted]"
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return b.String()
}

// DuplicateList renders a batch of groups separated by blank lines.
func DuplicateList(groups []*entities.DuplicateGroup) string {
	if len(groups) == 0 {
		return "No duplicates on record."
	}

	cards := make([]string, 0, len(groups))
	for _, group := range groups {
		cards = append(cards, DuplicateCard(group))
	}
	return strings.Join(cards, "\n")
}

func sizeLimit(mb int) string {
	if mb <= 0 {
		return "unlimited"
	}
	return Sizify(int64(mb) * 1024 * 1024)
}
