package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"market_backend/internal/feature/catalog/domain/entity"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
	// maxImageBytes は商品画像の最大サイズです。
	maxImageBytes = 5 << 20
)

// ProductRepository abstracts the persistence layer for products.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type ProductRepository interface {
	List(ctx context.Context, filter ListFilter) ([]entity.Product, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
	CountBySeller(ctx context.Context, sellerID string) (int64, error)
}

// ImageStorage stores product images and reports the available buckets.
type ImageStorage interface {
	Upload(ctx context.Context, accessToken, bucket, path string, data []byte, contentType string) (publicURL string, err error)
	ListBuckets(ctx context.Context, accessToken string) ([]entity.Bucket, error)
}

// ListFilter narrows a product listing. Zero values mean no restriction.
type ListFilter struct {
	Category string
	SellerID string
	Limit    int
}

// Seller is the signed-in business user acting on the catalog.
type Seller struct {
	ID          string
	Name        string
	AccessToken string
}

// Upload is a file received from the client.
type Upload struct {
	Filename string
	Data     []byte
}

// NewProduct is the input for creating a product. Price is the decimal string typed by the seller.
type NewProduct struct {
	Name        string
	Price       string
	Description string
	Category    string
	Stock       int
	Image       *Upload
}

// ProductPatch is a partial product update. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Price       *string
	Description *string
	Category    *string
	Stock       *int
}

// CatalogUsecase provides business logic for product operations.
type CatalogUsecase struct {
	repo    ProductRepository
	storage ImageStorage
}

// NewCatalogUsecase creates a new CatalogUsecase.
func NewCatalogUsecase(repo ProductRepository, storage ImageStorage) *CatalogUsecase {
	return &CatalogUsecase{repo: repo, storage: storage}
}

// List returns products newest first.
func (u *CatalogUsecase) List(ctx context.Context, filter ListFilter) ([]entity.Product, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultListLimit
	case filter.Limit > maxListLimit:
		filter.Limit = maxListLimit
	}
	filter.Category = strings.TrimSpace(filter.Category)
	return u.repo.List(ctx, filter)
}

// Get returns a single product or ErrProductNotFound.
func (u *CatalogUsecase) Get(ctx context.Context, id string) (*entity.Product, error) {
	if id == "" {
		return nil, ErrProductNotFound
	}
	return u.repo.FindByID(ctx, id)
}

// CountForSeller returns how many products sellerID has listed.
func (u *CatalogUsecase) CountForSeller(ctx context.Context, sellerID string) (int64, error) {
	return u.repo.CountBySeller(ctx, sellerID)
}

// Create validates and stores a product listed by seller, uploading its image first when present.
func (u *CatalogUsecase) Create(ctx context.Context, seller Seller, in NewProduct) (*entity.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || seller.ID == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	if in.Stock < 0 {
		return nil, ErrInvalidStock
	}

	p := &entity.Product{
		ID:            uuid.NewString(),
		Name:          name,
		Price:         price,
		Description:   strings.TrimSpace(in.Description),
		SellerID:      seller.ID,
		SellerName:    seller.Name,
		StockQuantity: in.Stock,
		Category:      strings.TrimSpace(in.Category),
	}

	if in.Image != nil && len(in.Image.Data) > 0 {
		url, err := u.uploadImage(ctx, seller, in.Image)
		if err != nil {
			return nil, err
		}
		p.ImageURL = &url
	}

	if err := u.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	slog.Info("product created", "product_id", p.ID, "seller_id", seller.ID, "price", p.Price.StringFixed(2))
	return p, nil
}

// uploadImage は画像の種類を判定し、<sellerID>/<uuid>.<ext> に保存して公開URLを返します。
func (u *CatalogUsecase) uploadImage(ctx context.Context, seller Seller, img *Upload) (string, error) {
	if len(img.Data) > maxImageBytes {
		return "", fmt.Errorf("%w: image exceeds %d bytes", ErrUnsupportedImage, maxImageBytes)
	}
	mt := mimetype.Detect(img.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}

	path := fmt.Sprintf("%s/%s%s", seller.ID, uuid.NewString(), mt.Extension())
	url, err := u.storage.Upload(ctx, seller.AccessToken, entity.ImageBucket, path, img.Data, mt.String())
	if err != nil {
		slog.Error("product image upload failed", "error", err, "seller_id", seller.ID, "filename", img.Filename)
		return "", fmt.Errorf("%w: %w", ErrImageUpload, err)
	}
	return url, nil
}

// Update applies patch to a product owned by sellerID.
func (u *CatalogUsecase) Update(ctx context.Context, sellerID, id string, patch ProductPatch) (*entity.Product, error) {
	p, err := u.owned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
		}
		p.Name = name
	}
	if patch.Price != nil {
		price, err := parsePrice(*patch.Price)
		if err != nil {
			return nil, err
		}
		p.Price = price
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		p.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, ErrInvalidStock
		}
		p.StockQuantity = *patch.Stock
	}

	if err := u.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

// Delete removes a product owned by sellerID.
func (u *CatalogUsecase) Delete(ctx context.Context, sellerID, id string) error {
	if _, err := u.owned(ctx, sellerID, id); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	slog.Info("product deleted", "product_id", id, "seller_id", sellerID)
	return nil
}

// ListBuckets returns the storage buckets visible to the caller.
func (u *CatalogUsecase) ListBuckets(ctx context.Context, accessToken string) ([]entity.Bucket, error) {
	return u.storage.ListBuckets(ctx, accessToken)
}

func (u *CatalogUsecase) owned(ctx context.Context, sellerID, id string) (*entity.Product, error) {
	p, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(sellerID) {
		return nil, ErrNotOwner
	}
	return p, nil
}

// parsePrice accepts a non-negative decimal with at most two fractional digits.
func parsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	if price.IsNegative() || !price.Equal(price.Round(2)) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	return price, nil
}
