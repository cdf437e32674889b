package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autofilter/sources/persistence/entities"
	"autofilter/sources/platform"
	"autofilter/sources/tracing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTierNotFound  = errors.New("tier not found")
	ErrTierReserved  = errors.New("the free tier is reserved and cannot be deleted")
	ErrTierNameEmpty = errors.New("tier name cannot be empty")
	ErrEmptyPatch    = errors.New("tier patch cannot be empty")
)

type TiersRepository struct {
	db *gorm.DB
}

func NewTiersRepository(db *gorm.DB) *TiersRepository {
	return &TiersRepository{db: db}
}

func (x *TiersRepository) GetByName(log *tracing.Logger, name string) (*entities.Tier, error) {
	defer tracing.ProfilePoint(log, "Tiers get by name completed", "repository.tiers.get.by.name", tracing.Tier, name)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var tier entities.Tier
	err := x.db.WithContext(ctx).Where("name = ?", name).First(&tier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTierNotFound
		}
		return nil, fmt.Errorf("failed to get tier %s: %w", name, err)
	}

	return &tier, nil
}

func (x *TiersRepository) GetAll(log *tracing.Logger) ([]*entities.Tier, error) {
	defer tracing.ProfilePoint(log, "Tiers get all completed", "repository.tiers.get.all")()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var tiers []*entities.Tier
	err := x.db.WithContext(ctx).Order("max_requests_per_day = 0, max_requests_per_day").Find(&tiers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all tiers: %w", err)
	}

	return tiers, nil
}

// Seed upserts a built-in tier definition by name. Only the seeded policy
// columns are overwritten; columns an admin may have customized out of band
// (price, timestamps) are left as they are.
func (x *TiersRepository) Seed(log *tracing.Logger, tier *entities.Tier) error {
	defer tracing.ProfilePoint(log, "Tiers seed completed", "repository.tiers.seed", tracing.Tier, tier.Name)()

	if tier.Name == "" {
		return ErrTierNameEmpty
	}

	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	err := x.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"description", "max_requests_per_day", "max_file_size_mb", "features", "referral_bonus",
		}),
	}).Create(tier).Error
	if err != nil {
		log.E("Failed to seed tier", tracing.Tier, tier.Name, tracing.InnerError, err)
		return err
	}

	return nil
}

func (x *TiersRepository) UpdateConfig(log *tracing.Logger, name string, patch map[string]any) error {
	defer tracing.ProfilePoint(log, "Tiers update config completed", "repository.tiers.update.config", tracing.Tier, name)()

	if len(patch) == 0 {
		return ErrEmptyPatch
	}

	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	res := x.db.WithContext(ctx).Model(&entities.Tier{}).Where("name = ?", name).Updates(patch)
	if res.Error != nil {
		log.E("Failed to update tier config", tracing.Tier, name, tracing.InnerError, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTierNotFound
	}

	log.I("Tier config updated", tracing.Tier, name)
	return nil
}

func (x *TiersRepository) Delete(log *tracing.Logger, name string) error {
	defer tracing.ProfilePoint(log, "Tiers delete completed", "repository.tiers.delete", tracing.Tier, name)()

	if name == platform.TierFree {
		return ErrTierReserved
	}

	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	res := x.db.WithContext(ctx).Where("name = ?", name).Delete(&entities.Tier{})
	if res.Error != nil {
		log.E("Failed to delete tier", tracing.Tier, name, tracing.InnerError, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTierNotFound
	}

	log.I("Tier deleted", tracing.Tier, name)
	return nil
}
