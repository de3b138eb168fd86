package catalog_test

import (
	"strings"
	"testing"

	"github.com/carcatalog/catalog"
	"github.com/carcatalog/catalog/kit/platform/errors"
	"github.com/stretchr/testify/require"
)

func TestBrandCreate_OK(t *testing.T) {
	b := catalog.BrandCreate{Name: "  Toyota  "}
	require.NoError(t, b.OK())
	require.Equal(t, "Toyota", b.Name)

	b = catalog.BrandCreate{Name: " \t "}
	require.Equal(t, catalog.ErrBrandNameRequired, b.OK())

	b = catalog.BrandCreate{Name: strings.Repeat("x", catalog.MaxBrandNameLength+1)}
	require.Equal(t, errors.EInvalid, errors.ErrorCode(b.OK()))

	b = catalog.BrandCreate{Name: strings.Repeat("Ş", catalog.MaxBrandNameLength)}
	require.NoError(t, b.OK())
}

func TestBrandUpdate_OK(t *testing.T) {
	b := catalog.BrandUpdate{Name: " BMW"}
	require.NoError(t, b.OK())
	require.Equal(t, "BMW", b.Name)

	b = catalog.BrandUpdate{}
	require.Equal(t, catalog.ErrBrandNameRequired, b.OK())
}

func TestNormalizeBrandName(t *testing.T) {
	require.Equal(t, "mercedes-benz", catalog.NormalizeBrandName("  Mercedes-Benz "))
	require.Equal(t, catalog.NormalizeBrandName("toyota"), catalog.NormalizeBrandName("TOYOTA"))
}

func TestErrBrandExists(t *testing.T) {
	err := catalog.ErrBrandExists("Toyota")
	require.Equal(t, errors.EConflict, err.Code)
	require.Equal(t, `brand "Toyota" already exists`, err.Error())
}

func TestPage_OK(t *testing.T) {
	require.NoError(t, catalog.Page{}.OK())
	require.NoError(t, catalog.Page{Offset: 10, Limit: catalog.MaxPageSize}.OK())
	require.Equal(t, catalog.ErrOffsetNegative, catalog.Page{Offset: -1}.OK())
	require.Equal(t, catalog.ErrLimitNegative, catalog.Page{Limit: -1}.OK())
	require.Equal(t, catalog.ErrLimitTooLarge, catalog.Page{Limit: catalog.MaxPageSize + 1}.OK())
}
