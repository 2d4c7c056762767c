package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"market_backend/internal/feature/auth/domain/entity"
	"market_backend/internal/feature/auth/usecase"
)

// profileGorm はProfileRepositoryインターフェースのGORM実装です。
type profileGorm struct {
	db *gorm.DB
}

// profileGormがProfileRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.ProfileRepository = (*profileGorm)(nil)

// NewProfileGorm は指定されたgorm.DB接続でprofileGormの新しいインスタンスを生成します。
func NewProfileGorm(db *gorm.DB) *profileGorm {
	return &profileGorm{db: db}
}

// FindByID はIDでプロフィールを取得します。
// 存在しない場合、usecase.ErrProfileNotFoundを返します。
func (r *profileGorm) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	var p entity.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreateIfAbsent は同じIDの行が無い場合のみプロフィールを追加します。
// 競合時は何もせず created=false を返します。
func (r *profileGorm) CreateIfAbsent(ctx context.Context, p *entity.Profile) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(p)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Update はnilでないフィールドのみを更新し、保存後の行を返します。
func (r *profileGorm) Update(ctx context.Context, id string, patch entity.ProfilePatch) (*entity.Profile, error) {
	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.AvatarURL != nil {
		updates["avatar_url"] = *patch.AvatarURL
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&entity.Profile{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, usecase.ErrProfileNotFound
		}
	}
	return r.FindByID(ctx, id)
}
