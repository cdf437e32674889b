package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type (
	// Tier is a named service level. The "free" tier is reserved: it is
	// seeded at startup and can never be deleted.
	Tier struct {
		ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
		Name              string          `gorm:"size:50;uniqueIndex;not null" json:"name"`
		Description       string          `gorm:"size:255;not null" json:"description"`
		MaxRequestsPerDay int             `gorm:"not null;default:0" json:"max_requests_per_day"`
		MaxFileSizeMB     int             `gorm:"not null;default:0" json:"max_file_size_mb"`
		Features          FeatureMap      `gorm:"type:jsonb;not null;default:'{}'" json:"features"`
		ReferralBonus     int             `gorm:"not null;default:0" json:"referral_bonus"`
		Price             decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
		CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
		UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	}

	// TierAssignment binds an external user id to a tier. Expiry nil means
	// permanent. LastRequestDate holds a YYYY-MM-DD day key; RequestsToday
	// is only meaningful for that day.
	TierAssignment struct {
		UserID           int64      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
		Tier             string     `gorm:"size:50;not null;index" json:"tier"`
		Expiry           *time.Time `gorm:"index" json:"expiry"`
		RequestsToday    int        `gorm:"not null;default:0" json:"requests_today"`
		LastRequestDate  string     `gorm:"size:10;not null;default:''" json:"last_request_date"`
		FeaturesOverride FeatureMap `gorm:"type:jsonb;not null;default:'{}'" json:"features_override"`
		UpdatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	}

	// File is one catalog entry. The catalog is populated externally by the
	// indexer; this service only reads it.
	File struct {
		FileID    string         `gorm:"size:255;primaryKey" json:"file_id"`
		FileName  string         `gorm:"size:512;not null;index" json:"file_name"`
		Size      int64          `gorm:"not null;default:0;index" json:"size"`
		Type      *string        `gorm:"size:50;index:idx_type_year,priority:1" json:"type"`
		Year      *string        `gorm:"size:10;index:idx_type_year,priority:2" json:"year"`
		Genre     *string        `gorm:"size:100" json:"genre"`
		Caption   *string        `gorm:"type:text" json:"caption"`
		Keywords  pq.StringArray `gorm:"type:text[]" json:"keywords"`
		CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	}

	// DuplicateGroup is one detected cluster of probably-identical files.
	// DuplicateID doubles as the idempotency key: re-running a detection
	// pass overwrites the same group instead of accumulating copies.
	DuplicateGroup struct {
		DuplicateID      string     `gorm:"size:300;primaryKey" json:"duplicate_id"`
		Method           string     `gorm:"size:50;not null;index" json:"method"`
		OriginalFileID   string     `gorm:"size:255;not null" json:"original_file_id"`
		OriginalFileName string     `gorm:"size:512;not null" json:"original_file_name"`
		OriginalSize     int64      `gorm:"not null;default:0" json:"original_size"`
		Status           string     `gorm:"size:20;not null;default:'unresolved';index" json:"status"`
		DetectedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"detected_at"`
		ResolvedAt       *time.Time `json:"resolved_at"`

		Members []DuplicateMember `gorm:"foreignKey:GroupID;references:DuplicateID;constraint:OnDelete:CASCADE" json:"members"`
	}

	DuplicateMember struct {
		ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
		GroupID    string     `gorm:"size:300;not null;index" json:"group_id"`
		FileID     string     `gorm:"size:255;not null;index" json:"file_id"`
		FileName   string     `gorm:"size:512;not null" json:"file_name"`
		Size       int64      `gorm:"not null;default:0" json:"size"`
		Similarity *float64   `json:"similarity"`
		Position   int        `gorm:"not null;default:0" json:"position"`
		Deleted    bool       `gorm:"not null;default:false" json:"deleted"`
		DeletedAt  *time.Time `json:"deleted_at"`
	}

	User struct {
		ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
		UserID    int64          `gorm:"uniqueIndex;not null" json:"user_id"`
		Username  *string        `gorm:"size:255" json:"username"`
		Fullname  *string        `gorm:"size:255" json:"fullname"`
		Rights    pq.StringArray `gorm:"type:text[];not null;default:ARRAY[]::text[]" json:"rights"`
		IsActive  *bool          `gorm:"not null;default:true" json:"is_active"`
		CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	}

	FileAccess struct {
		ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
		FileID     string    `gorm:"size:255;not null;index" json:"file_id"`
		UserID     int64     `gorm:"not null;index" json:"user_id"`
		AccessedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"accessed_at"`
	}
)

func (Tier) TableName() string            { return "af_tiers" }
func (TierAssignment) TableName() string  { return "af_user_tiers" }
func (File) TableName() string            { return "af_files" }
func (DuplicateGroup) TableName() string  { return "af_duplicates" }
func (DuplicateMember) TableName() string { return "af_duplicate_members" }
func (User) TableName() string            { return "af_users" }
func (FileAccess) TableName() string      { return "af_file_accesses" }
