package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/service"
	"github.com/HardPulse/mazpan/internal/testutil"
)

const seed = `
categories:
  - name: Mail
    description: Mailboxes
    products:
      - title: Gmail aged
        price: "2.50"
        type: accounts
        content: |
          a@gmail.com:1
          b@gmail.com:2
      - title: Proxy guide
        price: "10"
        content: https://example.com/guide
  - name: Social
    products: []
`

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(seed))
	require.NoError(t, err)
	require.Len(t, f.Categories, 2)
	assert.Equal(t, "Mail", f.Categories[0].Name)
	require.Len(t, f.Categories[0].Products, 2)
	assert.Equal(t, "2.50", f.Categories[0].Products[0].Price)
	assert.Equal(t, "accounts", f.Categories[0].Products[0].Type)
}

func TestParseEmptyAndUnknownField(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Categories)

	_, err = Parse(strings.NewReader("categories:\n  - name: x\n    colour: red\n"))
	assert.Error(t, err)
}

func TestImportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	shop := service.NewShopService(testutil.NewStore(t), nil, nil, nil)
	im := NewImporter(shop, nil)

	f, err := Parse(strings.NewReader(seed))
	require.NoError(t, err)

	sum, err := im.Import(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Summary{CategoriesCreated: 2, ProductsCreated: 2}, sum)

	categories, err := shop.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)

	var mailID string
	for _, c := range categories {
		if c.Name == "Mail" {
			mailID = c.ID
		}
	}
	require.NotEmpty(t, mailID)
	products, err := shop.ListProducts(ctx, mailID)
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		if p.Type == repository.ProductTypeAccounts {
			assert.Equal(t, int64(2), p.AvailableQuantity)
			assert.Equal(t, "2.5", p.Price.String())
		} else {
			assert.Equal(t, repository.ProductTypeOther, p.Type)
		}
	}

	sum, err = im.Import(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Summary{CategoriesReused: 2, ProductsSkipped: 2}, sum)
}

func TestImportRejectsBadPrice(t *testing.T) {
	shop := service.NewShopService(testutil.NewStore(t), nil, nil, nil)
	im := NewImporter(shop, nil)
	f := &File{Categories: []Category{{Name: "Misc", Products: []Product{{Title: "x", Price: "cheap"}}}}}
	_, err := im.Import(context.Background(), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid price")
}
