package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"autofilter/sources/persistence/entities"
	"autofilter/sources/platform"
	"autofilter/sources/tracing"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidUsername = errors.New("invalid username")
)

type UsersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

func (x *UsersRepository) CreateUser(log *tracing.Logger, euid int64, uname *string, ufullname *string) (*entities.User, error) {
	defer tracing.ProfilePoint(log, "Users create user completed", "repository.users.create.user", tracing.UserId, euid)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	user := &entities.User{
		UserID:   euid,
		Username: uname,
		Fullname: ufullname,
		IsActive: platform.BoolPtr(true),
	}

	if err := x.db.WithContext(ctx).Create(user).Error; err != nil {
		log.E("Failed to create user", tracing.InnerError, err)
		return nil, err
	}

	log.I("Created user")
	return user, nil
}

func (x *UsersRepository) GetUserByEid(log *tracing.Logger, euid int64) (*entities.User, error) {
	defer tracing.ProfilePoint(log, "Users get user by eid completed", "repository.users.get.user.by.eid", tracing.UserId, euid)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var user entities.User
	err := x.db.WithContext(ctx).Where("user_id = ?", euid).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.E("Failed to get user", tracing.InnerError, err)
		return nil, err
	}

	return &user, nil
}

func (x *UsersRepository) GetUserByName(log *tracing.Logger, uname string) (*entities.User, error) {
	defer tracing.ProfilePoint(log, "Users get user by name completed", "repository.users.get.user.by.name", tracing.UserName, uname)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	uname = strings.TrimSpace(strings.TrimPrefix(uname, "@"))
	if uname == "" {
		return nil, ErrInvalidUsername
	}

	var user entities.User
	err := x.db.WithContext(ctx).Where("username = ?", uname).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.E("Failed to get user", tracing.InnerError, err)
		return nil, err
	}

	return &user, nil
}

func (x *UsersRepository) UpdateUser(log *tracing.Logger, user *entities.User) (*entities.User, error) {
	defer tracing.ProfilePoint(log, "Users update user completed", "repository.users.update.user", tracing.UserId, user.UserID)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	err := x.db.WithContext(ctx).Model(&entities.User{}).Where("user_id = ?", user.UserID).Updates(user).Error
	if err != nil {
		log.E("Failed to update user", tracing.InnerError, err)
		return nil, err
	}

	return user, nil
}

func (x *UsersRepository) IsUserHasRight(log *tracing.Logger, user *entities.User, right entities.UserRight) bool {
	return slices.Contains(user.Rights, right)
}

// EnsureUser is the poller entry point: fetch the known user or register a
// first-time one.
func (x *UsersRepository) EnsureUser(log *tracing.Logger, euid int64, uname *string, ufullname *string) (*entities.User, error) {
	user, err := x.GetUserByEid(log, euid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to ensure user %d: %w", euid, err)
	}
	return x.CreateUser(log, euid, uname, ufullname)
}
