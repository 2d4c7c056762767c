// Package adapters はcartフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"market_backend/internal/feature/cart/domain/entity"
	"market_backend/internal/feature/cart/usecase"
)

// pgUniqueViolation はPostgresの一意制約違反のSQLSTATEです。
const pgUniqueViolation = "23505"

// cartGorm はCartRepositoryインターフェースのGORM実装です。
type cartGorm struct {
	db *gorm.DB
}

var _ usecase.CartRepository = (*cartGorm)(nil)

// NewCartRepository は指定されたDB接続でcartGormの新しいインスタンスを生成します。
func NewCartRepository(db *gorm.DB) *cartGorm {
	return &cartGorm{db: db}
}

// ListByCustomer は顧客のカート行を追加順に、商品情報付きで返します。
func (r *cartGorm) ListByCustomer(ctx context.Context, customerID string) ([]entity.CartItem, error) {
	var items []entity.CartItem
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Order("id").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddOrIncrement は同じ商品の行があれば数量を加算し、無ければ新しい行を追加します。
// 同時追加で一意制約違反になった場合は加算に切り替えます。
func (r *cartGorm) AddOrIncrement(ctx context.Context, customerID, productID string, qty int) error {
	incremented, err := r.increment(ctx, customerID, productID, qty)
	if err != nil || incremented {
		return err
	}

	item := &entity.CartItem{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		ProductID:  productID,
		Quantity:   qty,
	}
	err = r.db.WithContext(ctx).Omit("Product").Create(item).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return err
	}
	_, err = r.increment(ctx, customerID, productID, qty)
	return err
}

func (r *cartGorm) increment(ctx context.Context, customerID, productID string, qty int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.CartItem{}).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetQuantity は顧客自身のカート行の数量を設定します。
func (r *cartGorm) SetQuantity(ctx context.Context, customerID, itemID string, qty int) error {
	result := r.db.WithContext(ctx).Model(&entity.CartItem{}).
		Where("id = ? AND customer_id = ?", itemID, customerID).
		Update("quantity", qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrCartItemNotFound
	}
	return nil
}

// Delete は顧客自身のカート行を削除します。
func (r *cartGorm) Delete(ctx context.Context, customerID, itemID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", itemID, customerID).
		Delete(&entity.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrCartItemNotFound
	}
	return nil
}

// Clear は顧客のカートを空にします。
func (r *cartGorm) Clear(ctx context.Context, customerID string) error {
	return r.db.WithContext(ctx).Where("customer_id = ?", customerID).Delete(&entity.CartItem{}).Error
}

// isUniqueViolation はPostgresまたはSQLiteの一意制約違反かを判定します。
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
