// 文件路径: internal/catalog/catalog.go
// 模块说明: 从 YAML 文件导入商店目录，经由 ShopService 创建以复用清洗与库存规则。
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/service"
)

// File is the on-disk catalog layout.
type File struct {
	Categories []Category `yaml:"categories"`
}

// Category groups products in the seed file.
type Category struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Products    []Product `yaml:"products"`
}

// Product is one seeded product. Price is a decimal string such as "2.50".
type Product struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Type        string `yaml:"type"`
	Content     string `yaml:"content"`
	Unique      bool   `yaml:"unique"`
}

// Summary reports what an import changed.
type Summary struct {
	CategoriesCreated int
	CategoriesReused  int
	ProductsCreated   int
	ProductsSkipped   int
}

// Parse decodes a catalog file.
func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &f, nil
}

// Importer creates categories and products that do not exist yet.
type Importer struct {
	shop   service.ShopService
	logger *slog.Logger
}

func NewImporter(shop service.ShopService, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{shop: shop, logger: logger}
}

// Import matches categories by name and products by title within their category,
// so running the same file twice creates nothing new.
func (im *Importer) Import(ctx context.Context, f *File) (Summary, error) {
	var sum Summary
	existing, err := im.shop.ListCategories(ctx)
	if err != nil {
		return sum, err
	}
	byName := make(map[string]string, len(existing))
	for _, c := range existing {
		byName[strings.ToLower(c.Name)] = c.ID
	}

	for i, c := range f.Categories {
		categoryID, ok := byName[strings.ToLower(strings.TrimSpace(c.Name))]
		if ok {
			sum.CategoriesReused++
		} else {
			created, err := im.shop.CreateCategory(ctx, service.CategoryInput{Name: c.Name, Description: c.Description})
			if err != nil {
				return sum, fmt.Errorf("category #%d %q: %w", i+1, c.Name, err)
			}
			categoryID = created.ID
			byName[strings.ToLower(created.Name)] = created.ID
			sum.CategoriesCreated++
		}

		titles, err := im.productTitles(ctx, categoryID)
		if err != nil {
			return sum, err
		}
		for _, p := range c.Products {
			if titles[strings.ToLower(strings.TrimSpace(p.Title))] {
				sum.ProductsSkipped++
				continue
			}
			input, err := p.input(categoryID)
			if err != nil {
				return sum, fmt.Errorf("product %q: %w", p.Title, err)
			}
			created, err := im.shop.CreateProduct(ctx, input)
			if err != nil {
				return sum, fmt.Errorf("product %q: %w", p.Title, err)
			}
			titles[strings.ToLower(created.Title)] = true
			sum.ProductsCreated++
		}
	}
	im.logger.InfoContext(ctx, "catalog imported",
		"categories_created", sum.CategoriesCreated,
		"categories_reused", sum.CategoriesReused,
		"products_created", sum.ProductsCreated,
		"products_skipped", sum.ProductsSkipped,
	)
	return sum, nil
}

func (im *Importer) productTitles(ctx context.Context, categoryID string) (map[string]bool, error) {
	products, err := im.shop.ListProducts(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]bool, len(products))
	for _, p := range products {
		titles[strings.ToLower(p.Title)] = true
	}
	return titles, nil
}

func (p Product) input(categoryID string) (service.CreateProductInput, error) {
	price := decimal.Zero
	if raw := strings.TrimSpace(p.Price); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return service.CreateProductInput{}, fmt.Errorf("invalid price %q: %w", p.Price, err)
		}
		price = parsed
	}
	kind := repository.ProductType(strings.ToLower(strings.TrimSpace(p.Type)))
	if kind == "" {
		kind = repository.ProductTypeOther
	}
	return service.CreateProductInput{
		CategoryID:  categoryID,
		Title:       p.Title,
		Description: p.Description,
		Price:       price,
		Type:        kind,
		Content:     p.Content,
		Unique:      p.Unique,
	}, nil
}
