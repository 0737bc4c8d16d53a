package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRow struct {
	ID        string    `gorm:"primaryKey;size:255"`
	CreatedAt time.Time `gorm:"not null"`
}

func (userRow) TableName() string {
	return "users"
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Ensure(ctx context.Context, id string) (*model.User, error) {
	row := &userRow{ID: id, CreatedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create user", goerr.V(model.UserIDKey, id))
	}

	return r.Get(ctx, id)
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, goerr.Wrap(model.ErrNotFound, "user not found", goerr.V(model.UserIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(model.UserIDKey, id))
	}

	return &model.User{ID: row.ID, CreatedAt: row.CreatedAt}, nil
}
