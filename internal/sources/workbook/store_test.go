package workbook

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/promoavail/internal/catalog"
	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seed(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	products := []domain.Product{
		{
			Name:          "Card Holder",
			Category:      "Badges & Accessories",
			WebsiteColors: []string{"Black", "Clear"},
			Sourcing: domain.Sourcing{
				Local: domain.LocalSourcing{Supplier: "ABC Supplies", MOQ: domain.IntPtr(100)},
				China: domain.ChinaSourcing{Available: true, MOQ: domain.IntPtr(1000)},
			},
		},
		{Name: "Hoodie", Category: "Apparel"},
	}
	synonyms := []domain.Synonym{{CustomerSays: "badge case", WeCallIt: "Card Holder"}}

	require.NoError(t, Create(path, products, synonyms))
	return New(path, logger.Nop())
}

func TestListProducts(t *testing.T) {
	s := seed(t)

	products, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Card Holder", products[0].Name)
	assert.Equal(t, []string{"Black", "Clear"}, products[0].WebsiteColors)
	assert.Equal(t, domain.IntPtr(1000), products[0].Sourcing.China.MOQ)
	assert.Equal(t, "Hoodie", products[1].Name)
}

func TestListSynonyms(t *testing.T) {
	s := seed(t)

	synonyms, err := s.ListSynonyms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Synonym{{CustomerSays: "badge case", WeCallIt: "Card Holder"}}, synonyms)
}

func TestListSynonymsMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", catalog.ProductsSheet))
	require.NoError(t, f.SetSheetRow(catalog.ProductsSheet, "A1", &catalog.ProductHeaders))
	require.NoError(t, f.SetSheetRow(catalog.ProductsSheet, "A2", &[]string{"Mug"}))
	require.NoError(t, f.SetSheetRow(catalog.ProductsSheet, "A3", &[]string{"", "orphan category"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	s := New(path, logger.Nop())
	synonyms, err := s.ListSynonyms(context.Background())
	require.NoError(t, err)
	assert.Empty(t, synonyms)

	products, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1, "row without a name is skipped")
}

func TestAppendAndUpdate(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	require.NoError(t, s.AppendProducts(ctx, []domain.Product{{Name: "Tote Bag", Category: "Bags"}}))

	updated := domain.Product{Name: "hoodie", Category: "Outerwear"}
	require.NoError(t, s.UpdateProduct(ctx, updated))

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Outerwear", products[1].Category)
	assert.Equal(t, "Tote Bag", products[2].Name)

	err = s.UpdateProduct(ctx, domain.Product{Name: "Flying Carpet"})
	assert.True(t, errors.Is(err, catalog.ErrProductNotFound))
}

func TestOpenMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing.xlsx"), logger.Nop())
	_, err := s.ListProducts(context.Background())
	assert.Error(t, err)
}

func TestCanceledContext(t *testing.T) {
	s := seed(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
