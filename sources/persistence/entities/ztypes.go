package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

const (
	StatusUnresolved = "unresolved"
	StatusResolved   = "resolved"
)

const (
	FeatureCanDownload     = "can_download"
	FeatureCanStream       = "can_stream"
	FeatureBatchRequests   = "batch_requests"
	FeatureRemoveAds       = "remove_ads"
	FeatureEarlyAccess     = "early_access"
	FeaturePrioritySupport = "priority_support"
	FeatureNLPSearch       = "nlp_search"
)

type UserRight = string

const (
	UserRightManageTiers      UserRight = "manage_tiers"
	UserRightManageDuplicates UserRight = "manage_duplicates"
	UserRightExportCatalog    UserRight = "export_catalog"
)

// FeatureMap is a jsonb feature-name -> allowed mapping. On tiers it is the
// tier's policy; on assignments it is the sparse per-user override set.
type FeatureMap map[string]bool

func (FeatureMap) GormDataType() string { return "jsonb" }

func (m FeatureMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *FeatureMap) Scan(value any) error {
	if value == nil {
		*m = FeatureMap{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported feature map source type %T", value)
	}

	if len(data) == 0 {
		*m = FeatureMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}
