// Package carcsv moves cars in and out of the catalog as CSV.
//
// Rows carry the brand by name rather than by ID so that a file exported
// from one catalog can be imported into another.
package carcsv

import (
	"context"
	"encoding/csv"
	goerrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carcatalog/catalog"
	"github.com/carcatalog/catalog/kit/platform/errors"
	"github.com/google/uuid"
)

const (
	OpExport = "ExportCars"
	OpImport = "ImportCars"
)

const (
	colID          = "id"
	colBrand       = "brand"
	colSeries      = "series"
	colColor       = "color"
	colYear        = "year"
	colFuelType    = "fuelType"
	colCondition   = "condition"
	colMileage     = "mileage"
	colEnginePower = "enginePower"
	colIsActive    = "isActive"
)

// Header is the first record written by Export.
var Header = []string{
	colID, colBrand, colSeries, colColor, colYear, colFuelType,
	colCondition, colMileage, colEnginePower, colIsActive,
}

var requiredColumns = []string{
	colBrand, colSeries, colColor, colYear, colFuelType,
	colCondition, colMileage, colEnginePower,
}

// Export writes every car to w, oldest first, and returns how many rows it wrote.
func Export(ctx context.Context, w io.Writer, cars catalog.CarService, brands catalog.BrandService) (int, error) {
	bs, err := brands.ListBrands(ctx, catalog.BrandFilter{})
	if err != nil {
		return 0, err
	}
	names := make(map[uuid.UUID]string, len(bs))
	for _, b := range bs {
		names[b.ID] = b.Name
	}

	cs, err := cars.ListCars(ctx, catalog.CarFilter{})
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return 0, errors.Internal(OpExport, err)
	}

	for _, c := range cs {
		record := []string{
			c.ID.String(),
			names[c.BrandID],
			c.Series,
			c.Color,
			strconv.Itoa(c.Year),
			c.FuelType.String(),
			c.Condition.String(),
			strconv.Itoa(c.Mileage),
			c.EnginePower,
			strconv.FormatBool(c.IsActive),
		}
		if err := cw.Write(record); err != nil {
			return 0, errors.Internal(OpExport, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, errors.Internal(OpExport, err)
	}
	return len(cs), nil
}

// Import creates a car for every row read from r. Columns are matched by
// header name and may come in any order; the id column is ignored. Brands
// are looked up by name and created when missing.
//
// Import stops at the first row that fails and reports its line. Rows before
// it stay imported; the returned count says how many.
func Import(ctx context.Context, r io.Reader, cars catalog.CarService, brands catalog.BrandService) (int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return 0, errors.Invalidf("csv input is empty")
	}
	if err != nil {
		return 0, parseError(err)
	}

	cols, err := columnIndex(header)
	if err != nil {
		return 0, err
	}

	im := importer{
		cars:   cars,
		brands: brands,
		ids:    make(map[string]uuid.UUID),
	}

	var n int
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, parseError(err)
		}

		line, _ := cr.FieldPos(0)
		row := func(col string) string {
			return strings.TrimSpace(record[cols[col]])
		}

		if err := im.importRow(ctx, row, cols); err != nil {
			return n, lineError(line, err)
		}
		n++
	}
}

type importer struct {
	cars   catalog.CarService
	brands catalog.BrandService

	// ids caches brand IDs by normalized name.
	ids map[string]uuid.UUID
}

func (im *importer) importRow(ctx context.Context, row func(string) string, cols map[string]int) error {
	brandID, err := im.brandID(ctx, row(colBrand))
	if err != nil {
		return err
	}

	create := catalog.CarCreate{
		BrandID:     brandID,
		Series:      row(colSeries),
		Color:       row(colColor),
		EnginePower: row(colEnginePower),
	}

	if create.Year, err = atoi(colYear, row(colYear)); err != nil {
		return err
	}
	if create.Mileage, err = atoi(colMileage, row(colMileage)); err != nil {
		return err
	}
	if create.FuelType, err = catalog.ParseFuelType(row(colFuelType)); err != nil {
		return err
	}
	if create.Condition, err = catalog.ParseCondition(row(colCondition)); err != nil {
		return err
	}

	if _, ok := cols[colIsActive]; ok {
		if v := row(colIsActive); v != "" {
			active, err := strconv.ParseBool(v)
			if err != nil {
				return errors.Invalidf("%s %q is not a boolean", colIsActive, v)
			}
			create.IsActive = &active
		}
	}

	_, err = im.cars.CreateCar(ctx, create)
	return err
}

func (im *importer) brandID(ctx context.Context, name string) (uuid.UUID, error) {
	key := catalog.NormalizeBrandName(name)
	if id, ok := im.ids[key]; ok {
		return id, nil
	}

	bs, err := im.brands.ListBrands(ctx, catalog.BrandFilter{Name: &name})
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	if len(bs) > 0 {
		id = bs[0].ID
	} else {
		b, err := im.brands.CreateBrand(ctx, catalog.BrandCreate{Name: name})
		if err != nil {
			return uuid.Nil, err
		}
		id = b.ID
	}

	im.ids[key] = id
	return id, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, errors.Invalidf("csv header is missing column %q", c)
		}
	}
	return cols, nil
}

func atoi(col, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Invalidf("%s %q is not a number", col, v)
	}
	return n, nil
}

func parseError(err error) error {
	e := &errors.Error{
		Code: errors.EInvalid,
		Msg:  "malformed csv",
		Op:   OpImport,
		Err:  err,
	}
	var pe *csv.ParseError
	if goerrors.As(err, &pe) {
		e.Msg = fmt.Sprintf("line %d: malformed csv: %v", pe.StartLine, pe.Err)
	}
	return e
}

func lineError(line int, err error) error {
	e := &errors.Error{
		Code: errors.ErrorCode(err),
		Msg:  fmt.Sprintf("line %d: %s", line, errors.ErrorMessage(err)),
		Op:   OpImport,
	}
	if e.Code == errors.EInternal {
		e.Err = err
	}
	return e
}
