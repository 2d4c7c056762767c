// Package adapters はcatalogフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"market_backend/internal/feature/catalog/domain/entity"
	"market_backend/internal/feature/catalog/usecase"
)

const pgForeignKeyViolation = "23503"

// productGorm はProductRepositoryインターフェースのGORM実装です。
type productGorm struct {
	db *gorm.DB
}

var _ usecase.ProductRepository = (*productGorm)(nil)

// NewProductRepository は指定されたDB接続でproductGormの新しいインスタンスを生成します。
func NewProductRepository(db *gorm.DB) *productGorm {
	return &productGorm{db: db}
}

// List は作成日時の新しい順に商品を返します。
func (r *productGorm) List(ctx context.Context, filter usecase.ListFilter) ([]entity.Product, error) {
	q := r.db.WithContext(ctx).Model(&entity.Product{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.SellerID != "" {
		q = q.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var products []entity.Product
	if err := q.Order("created_at DESC").Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// CountBySeller は販売者の商品数を返します。
func (r *productGorm) CountBySeller(ctx context.Context, sellerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Product{}).Where("seller_id = ?", sellerID).Count(&n).Error
	return n, err
}

// FindByID はIDで商品を取得します。存在しない場合はusecase.ErrProductNotFoundを返します。
func (r *productGorm) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create は新しい商品を保存します。
func (r *productGorm) Create(ctx context.Context, p *entity.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Update は販売者が変更できるフィールドを保存します。
func (r *productGorm) Update(ctx context.Context, p *entity.Product) error {
	p.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(p).
		Select("name", "price", "description", "image_url", "stock_quantity", "category", "updated_at").
		Updates(p)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrProductNotFound
	}
	return nil
}

// Delete は商品を削除します。
func (r *productGorm) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Product{})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return fmt.Errorf("%w: %s", usecase.ErrProductInUse, id)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrProductNotFound
	}
	return nil
}

// isForeignKeyViolation はPostgresまたはSQLiteの外部キー制約違反かを判定します。
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
