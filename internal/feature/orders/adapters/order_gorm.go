// Package adapters はordersフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"market_backend/internal/feature/orders/domain/entity"
	"market_backend/internal/feature/orders/usecase"
)

// sellerOrderIDs は販売者の商品を含む注文IDのサブクエリです。
const sellerOrderIDs = `SELECT oi.order_id FROM order_items oi
	JOIN products p ON p.id = oi.product_id
	WHERE p.seller_id = ?`

// orderGorm はOrderRepositoryインターフェースのGORM実装です。
type orderGorm struct {
	db *gorm.DB
}

var _ usecase.OrderRepository = (*orderGorm)(nil)

// NewOrderRepository は指定されたDB接続でorderGormの新しいインスタンスを生成します。
func NewOrderRepository(db *gorm.DB) *orderGorm {
	return &orderGorm{db: db}
}

// ListByCustomer は顧客の注文を新しい順に、明細と商品情報付きで返します。
func (r *orderGorm) ListByCustomer(ctx context.Context, customerID string, limit int) ([]entity.Order, error) {
	q := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var orders []entity.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListBySeller は販売者の商品を1つ以上含む注文を新しい順に返します。
func (r *orderGorm) ListBySeller(ctx context.Context, sellerID string) ([]entity.Order, error) {
	var orders []entity.Order
	if err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("id IN ("+sellerOrderIDs+")", sellerID).
		Order("created_at DESC").
		Order("id").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByID はIDで注文を取得します。存在しない場合はusecase.ErrOrderNotFoundを返します。
func (r *orderGorm) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	var o entity.Order
	if err := r.db.WithContext(ctx).Preload("Items.Product").Where("id = ?", id).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

// UpdateStatus はステータスがfromのままの場合のみtoに更新します。
func (r *orderGorm) UpdateStatus(ctx context.Context, id string, from, to entity.Status) error {
	result := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.Order{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return usecase.ErrOrderNotFound
	}
	return usecase.ErrStatusConflict
}

// CustomerStatsForSeller は販売者の商品を購入した顧客ごとの注文数と購入額を集計します。
// キャンセルされた注文は含みません。
func (r *orderGorm) CustomerStatsForSeller(ctx context.Context, sellerID string) ([]entity.CustomerStat, error) {
	var stats []entity.CustomerStat
	err := r.db.WithContext(ctx).Raw(`
		SELECT o.customer_id AS customer_id,
		       COALESCE(pr.name, '') AS name,
		       COALESCE(pr.email, '') AS email,
		       COUNT(DISTINCT o.id) AS order_count,
		       SUM(oi.quantity * oi.unit_price) AS total_spent
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		LEFT JOIN profiles pr ON pr.id = o.customer_id
		WHERE p.seller_id = ? AND o.status <> ?
		GROUP BY o.customer_id, pr.name, pr.email
		ORDER BY total_spent DESC, o.customer_id`, sellerID, entity.StatusCancelled).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// SalesSummary は販売者の注文数と売上（数量×単価の合計）を集計します。
func (r *orderGorm) SalesSummary(ctx context.Context, sellerID string) (entity.SalesSummary, error) {
	var s entity.SalesSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(DISTINCT o.id) AS order_count,
		       COALESCE(SUM(oi.quantity * oi.unit_price), 0) AS revenue
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		WHERE p.seller_id = ? AND o.status <> ?`, sellerID, entity.StatusCancelled).
		Scan(&s).Error
	return s, err
}
