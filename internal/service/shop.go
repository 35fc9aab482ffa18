// 文件路径: internal/service/shop.go
// 模块说明: 商店：分类、商品、按账龄分桶的库存展示，以及在单个事务内完成的购买流程。
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/HardPulse/mazpan/internal/inventory"
	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/security"
	"github.com/HardPulse/mazpan/internal/support/money"
	"github.com/HardPulse/mazpan/internal/telemetry"
)

// UnlimitedQuantity stands in for the stock of non-unique flat goods.
const UnlimitedQuantity int64 = 1_000_000

// ShopService manages the catalog and executes purchases.
type ShopService interface {
	ListCategories(ctx context.Context) ([]CategoryView, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*CategoryView, error)
	// DeleteCategory removes the category with its products and reports how many products went.
	DeleteCategory(ctx context.Context, id string) (int64, error)

	ListProducts(ctx context.Context, categoryID string) ([]ProductView, error)
	GetProduct(ctx context.Context, id string, withContent bool) (*ProductView, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductView, error)
	UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*ProductView, error)
	DeleteProduct(ctx context.Context, id string) error

	Purchase(ctx context.Context, userID, productID string, input PurchaseInput) (*PurchaseResult, error)
	ListPurchases(ctx context.Context, userID string) ([]PurchaseView, error)
}

// CategoryInput creates a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryView 分类及其商品数。
type CategoryView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ProductCount int    `json:"product_count"`
	CreatedAt    int64  `json:"created_at"`
}

// CreateProductInput creates a product.
type CreateProductInput struct {
	CategoryID  string                 `json:"category_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Price       decimal.Decimal        `json:"price"`
	Type        repository.ProductType `json:"type"`
	Content     string                 `json:"content"`
	Unique      bool                   `json:"unique"`
}

// UpdateProductInput carries optional changes; the product type is fixed at creation.
type UpdateProductInput struct {
	CategoryID  *string          `json:"category_id"`
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Content     *string          `json:"content"`
	Unique      *bool            `json:"unique"`
}

// ProductView 是商品的对外视图。Content 仅对管理员返回。
type ProductView struct {
	ID                string                 `json:"id"`
	CategoryID        string                 `json:"category_id"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	Price             decimal.Decimal        `json:"price"`
	Type              repository.ProductType `json:"type"`
	Unique            bool                   `json:"unique"`
	OriginalQuantity  int64                  `json:"original_quantity"`
	AvailableQuantity int64                  `json:"available_quantity"`
	SoldQuantity      int64                  `json:"sold_quantity"`
	AgeBuckets        *inventory.AgeBuckets  `json:"age_buckets,omitempty"`
	Content           *string                `json:"content,omitempty"`
	CreatedAt         int64                  `json:"created_at"`
	UpdatedAt         int64                  `json:"updated_at"`
}

// PurchaseInput 购买参数；MinAgeHours 为空表示不按账龄筛选。
type PurchaseInput struct {
	Quantity    int  `json:"quantity"`
	MinAgeHours *int `json:"min_age_hours"`
}

// PurchaseResult is returned to the buyer.
type PurchaseResult struct {
	PurchaseID string          `json:"purchase_id"`
	Content    string          `json:"content"`
	Quantity   int             `json:"quantity"`
	Total      decimal.Decimal `json:"total"`
	Balance    decimal.Decimal `json:"balance"`
}

// PurchaseView is one entry of a buyer's history.
type PurchaseView struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Total        decimal.Decimal `json:"total"`
	Content      string          `json:"content"`
	MinAgeHours  *int64          `json:"min_age_hours"`
	CreatedAt    int64           `json:"created_at"`
}

type shopService struct {
	store  repository.Store
	audit  security.Recorder
	clock  Clock
	logger *slog.Logger
}

// NewShopService 构造商店服务。
func NewShopService(store repository.Store, audit security.Recorder, clock Clock, logger *slog.Logger) ShopService {
	if audit == nil {
		audit = security.NopRecorder{}
	}
	return &shopService{store: store, audit: audit, clock: clock, logger: discardLogger(logger)}
}

func (s *shopService) ListCategories(ctx context.Context) ([]CategoryView, error) {
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.store.Products().List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(categories))
	for _, p := range products {
		counts[p.CategoryID]++
	}
	views := make([]CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, CategoryView{
			ID:           c.ID,
			Name:         c.Name,
			Description:  c.Description,
			ProductCount: counts[c.ID],
			CreatedAt:    c.CreatedAt,
		})
	}
	return views, nil
}

func (s *shopService) CreateCategory(ctx context.Context, input CategoryInput) (*CategoryView, error) {
	name := strings.TrimSpace(sanitizeText(input.Name))
	if name == "" {
		return nil, ErrTitleRequired
	}
	category := &repository.Category{
		ID:          newID(),
		Name:        name,
		Description: strings.TrimSpace(sanitizeText(input.Description)),
		CreatedAt:   s.clock.now().Unix(),
	}
	if err := s.store.Categories().Create(ctx, category); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "category created", "category_id", category.ID, "name", category.Name)
	return &CategoryView{ID: category.ID, Name: category.Name, Description: category.Description, CreatedAt: category.CreatedAt}, nil
}

func (s *shopService) DeleteCategory(ctx context.Context, id string) (int64, error) {
	var removed int64
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := s.findCategory(ctx, tx, id); err != nil {
			return err
		}
		n, err := tx.Products().DeleteByCategory(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return tx.Categories().Delete(ctx, id)
	})
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "category deleted", "category_id", id, "products", removed)
	return removed, nil
}

func (s *shopService) findCategory(ctx context.Context, store repository.Store, id string) (*repository.Category, error) {
	category, err := store.Categories().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *shopService) findProduct(ctx context.Context, store repository.Store, id string) (*repository.Product, error) {
	product, err := store.Products().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *shopService) ListProducts(ctx context.Context, categoryID string) ([]ProductView, error) {
	products, err := s.store.Products().List(ctx, repository.ProductFilter{CategoryID: categoryID})
	if err != nil {
		return nil, err
	}
	now := s.clock.now()
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p, now, false))
	}
	return views, nil
}

func (s *shopService) GetProduct(ctx context.Context, id string, withContent bool) (*ProductView, error) {
	product, err := s.findProduct(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	view := newProductView(product, s.clock.now(), withContent)
	return &view, nil
}

func newProductView(p *repository.Product, now time.Time, withContent bool) ProductView {
	view := ProductView{
		ID:                p.ID,
		CategoryID:        p.CategoryID,
		Title:             p.Title,
		Description:       p.Description,
		Price:             money.FromCents(p.PriceCents),
		Type:              p.Type,
		Unique:            p.Unique,
		OriginalQuantity:  p.OriginalQuantity,
		AvailableQuantity: p.AvailableQuantity,
		SoldQuantity:      p.SoldQuantity,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.Type == repository.ProductTypeAccounts {
		buckets := inventory.Bucketize(time.Unix(p.CreatedAt, 0), len(inventory.SplitLines(p.Content)), now)
		view.AgeBuckets = &buckets
	}
	if withContent {
		content := p.Content
		view.Content = &content
	}
	return view
}

func priceCents(price decimal.Decimal) (int64, error) {
	if price.IsNegative() {
		return 0, ErrPriceInvalid
	}
	return money.ToCents(price), nil
}

func (s *shopService) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductView, error) {
	title := strings.TrimSpace(sanitizeText(input.Title))
	if title == "" {
		return nil, ErrTitleRequired
	}
	price, err := priceCents(input.Price)
	if err != nil {
		return nil, err
	}
	if _, err := s.findCategory(ctx, s.store, input.CategoryID); err != nil {
		return nil, err
	}

	now := s.clock.now()
	product := &repository.Product{
		ID:          newID(),
		CategoryID:  input.CategoryID,
		Title:       title,
		Description: strings.TrimSpace(sanitizeText(input.Description)),
		PriceCents:  price,
		Type:        input.Type,
		CreatedAt:   now.Unix(),
		UpdatedAt:   now.Unix(),
	}
	switch input.Type {
	case repository.ProductTypeAccounts:
		content, lines := inventory.Normalize(input.Content)
		product.Content = content
		product.OriginalQuantity = int64(lines)
		product.AvailableQuantity = int64(lines)
	case repository.ProductTypeOther:
		product.Content = input.Content
		product.Unique = input.Unique
		product.OriginalQuantity = UnlimitedQuantity
		if input.Unique {
			product.OriginalQuantity = 1
		}
		product.AvailableQuantity = product.OriginalQuantity
	default:
		return nil, ErrProductTypeInvalid
	}

	if err := s.store.Products().Create(ctx, product); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "product created", "product_id", product.ID, "type", product.Type, "quantity", product.AvailableQuantity)
	view := newProductView(product, now, true)
	return &view, nil
}

func (s *shopService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*ProductView, error) {
	now := s.clock.now()
	var product *repository.Product
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		p, err := s.findProduct(ctx, tx, id)
		if err != nil {
			return err
		}
		if input.CategoryID != nil && *input.CategoryID != p.CategoryID {
			if _, err := s.findCategory(ctx, tx, *input.CategoryID); err != nil {
				return err
			}
			p.CategoryID = *input.CategoryID
		}
		if input.Title != nil {
			title := strings.TrimSpace(sanitizeText(*input.Title))
			if title == "" {
				return ErrTitleRequired
			}
			p.Title = title
		}
		if input.Description != nil {
			p.Description = strings.TrimSpace(sanitizeText(*input.Description))
		}
		if input.Price != nil {
			price, err := priceCents(*input.Price)
			if err != nil {
				return err
			}
			p.PriceCents = price
		}

		switch p.Type {
		case repository.ProductTypeAccounts:
			if input.Content != nil {
				content, lines := inventory.Normalize(*input.Content)
				p.Content = content
				p.AvailableQuantity = int64(lines)
				p.OriginalQuantity = int64(lines) + p.SoldQuantity
			}
		case repository.ProductTypeOther:
			if input.Content != nil {
				p.Content = *input.Content
			}
			if input.Unique != nil && *input.Unique != p.Unique {
				p.Unique = *input.Unique
				if p.Unique {
					p.AvailableQuantity = 1
					p.OriginalQuantity = p.SoldQuantity + 1
				} else {
					p.AvailableQuantity = UnlimitedQuantity
					p.OriginalQuantity = UnlimitedQuantity
				}
			}
		}
		p.UpdatedAt = now.Unix()
		if err := tx.Products().Update(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "product updated", "product_id", id)
	view := newProductView(product, now, true)
	return &view, nil
}

func (s *shopService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.Products().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.logger.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

func (s *shopService) Purchase(ctx context.Context, userID, productID string, input PurchaseInput) (result *PurchaseResult, err error) {
	productType := "unknown"
	defer func() {
		telemetry.Purchases.WithLabelValues(productType, telemetry.Outcome(err)).Inc()
	}()

	if input.Quantity < 1 {
		return nil, ErrQuantityInvalid
	}
	if input.MinAgeHours != nil && *input.MinAgeHours < 0 {
		return nil, ErrMinAgeInvalid
	}
	qty := int64(input.Quantity)
	now := s.clock.now()

	var purchase *repository.Purchase
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		product, err := s.findProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		productType = string(product.Type)
		if qty > product.AvailableQuantity {
			return ErrInsufficientStock
		}
		buyer, err := findUser(ctx, tx.Users(), userID)
		if err != nil {
			return err
		}
		total := money.Multiply(product.PriceCents, input.Quantity)
		if total > buyer.BalanceCents {
			return ErrShopInsufficientBalance
		}

		expected := product.AvailableQuantity
		var delivered string
		switch product.Type {
		case repository.ProductTypeAccounts:
			var minAge time.Duration
			if input.MinAgeHours != nil {
				if minAge, err = inventory.MinAgeFromHours(*input.MinAgeHours); err != nil {
					return ErrNotEnoughAged
				}
			}
			sel, err := inventory.Take(inventory.SplitLines(product.Content), time.Unix(product.CreatedAt, 0), input.Quantity, minAge, now)
			switch {
			case errors.Is(err, inventory.ErrNotEnoughAged):
				return ErrNotEnoughAged
			case errors.Is(err, inventory.ErrNotEnoughLines):
				return ErrInsufficientStock
			case err != nil:
				return err
			}
			delivered = inventory.JoinLines(sel.Delivered)
			product.Content = inventory.JoinLines(sel.Remaining)
			product.AvailableQuantity = int64(len(sel.Remaining))
		default:
			delivered = product.Content
			product.AvailableQuantity -= qty
		}
		product.SoldQuantity += qty
		product.UpdatedAt = now.Unix()

		if err := tx.Products().UpdateStock(ctx, product, expected); err != nil {
			if errors.Is(err, repository.ErrStale) {
				return ErrStockChanged
			}
			return err
		}
		balance, err := tx.Users().AdjustBalance(ctx, userID, -total, now.Unix())
		if err != nil {
			if errors.Is(err, repository.ErrStale) {
				return ErrShopInsufficientBalance
			}
			return err
		}

		purchase = &repository.Purchase{
			ID:             newID(),
			UserID:         userID,
			ProductID:      product.ID,
			ProductTitle:   product.Title,
			Quantity:       qty,
			UnitPriceCents: product.PriceCents,
			TotalCents:     total,
			Content:        delivered,
			CreatedAt:      now.Unix(),
		}
		if input.MinAgeHours != nil && *input.MinAgeHours > 0 && product.Type == repository.ProductTypeAccounts {
			hours := int64(*input.MinAgeHours)
			purchase.MinAgeHours = &hours
		}
		if err := tx.Purchases().Create(ctx, purchase); err != nil {
			return err
		}
		result = &PurchaseResult{
			PurchaseID: purchase.ID,
			Content:    delivered,
			Quantity:   input.Quantity,
			Total:      money.FromCents(total),
			Balance:    money.FromCents(balance),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.RevenueCents.Add(float64(purchase.TotalCents))
	s.audit.Record(ctx, security.Event{
		Kind:     security.KindShopPurchase,
		ActorID:  userID,
		TargetID: productID,
		Metadata: map[string]any{"quantity": purchase.Quantity, "total_cents": purchase.TotalCents},
	})
	s.logger.InfoContext(ctx, "purchase completed", "user_id", userID, "product_id", productID, "quantity", purchase.Quantity, "total_cents", purchase.TotalCents)
	return result, nil
}

func (s *shopService) ListPurchases(ctx context.Context, userID string) ([]PurchaseView, error) {
	purchases, err := s.store.Purchases().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]PurchaseView, 0, len(purchases))
	for _, p := range purchases {
		views = append(views, PurchaseView{
			ID:           p.ID,
			ProductID:    p.ProductID,
			ProductTitle: p.ProductTitle,
			Quantity:     p.Quantity,
			UnitPrice:    money.FromCents(p.UnitPriceCents),
			Total:        money.FromCents(p.TotalCents),
			Content:      p.Content,
			MinAgeHours:  p.MinAgeHours,
			CreatedAt:    p.CreatedAt,
		})
	}
	return views, nil
}
