package transport

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/carcatalog/catalog"
	"github.com/carcatalog/catalog/kit/platform/errors"
	"github.com/carcatalog/catalog/mock"
	"github.com/carcatalog/catalog/pkg/testttp"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	brandID  = mock.SequentialID(1)
	carID    = mock.SequentialID(2)
	carIDStr = carID.String()
	created  = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	testCar  = &catalog.Car{
		ID:          carID,
		BrandID:     brandID,
		Series:      "Golf",
		Color:       "blue",
		Year:        2020,
		FuelType:    catalog.FuelDiesel,
		Condition:   catalog.ConditionUsed,
		Mileage:     40000,
		EnginePower: "110 kW",
		IsActive:    true,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
)

type fixture struct {
	handler *CarHandler
	cars    *mock.MockCarService
	brands  *mock.MockBrandService
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	cars := mock.NewMockCarService(ctrl)
	brands := mock.NewMockBrandService(ctrl)
	return fixture{
		handler: NewCarHandler(zaptest.NewLogger(t), cars, brands),
		cars:    cars,
		brands:  brands,
	}
}

func carCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"brandID":     brandID.String(),
		"series":      "Golf",
		"color":       "blue",
		"year":        2020,
		"fuelType":    2,
		"condition":   2,
		"mileage":     40000,
		"enginePower": "110 kW",
	}
}

func TestCarHandler_GetCars(t *testing.T) {
	t.Run("filters are passed to the service", func(t *testing.T) {
		f := newFixture(t)

		active := false
		f.cars.EXPECT().
			ListCars(gomock.Any(), catalog.CarFilter{
				BrandID:  &brandID,
				IsActive: &active,
				Page:     catalog.Page{Limit: 20},
			}).
			Return([]*catalog.Car{testCar}, nil)

		testttp.Get(t, "/?brandID="+brandID.String()+"&isActive=false&limit=20").
			Do(f.handler).
			ExpectStatus(http.StatusOK).
			ExpectBody(func(buf *bytes.Buffer) {
				var got carsResponse
				require.NoError(t, json.NewDecoder(buf).Decode(&got))
				require.Equal(t, []*catalog.Car{testCar}, got.Cars)
			})
	})

	t.Run("invalid query values return 400", func(t *testing.T) {
		for _, q := range []string{"brandID=nope", "isActive=maybe", "offset=x"} {
			t.Run(q, func(t *testing.T) {
				f := newFixture(t)

				testttp.Get(t, "/?"+q).
					Do(f.handler).
					ExpectStatus(http.StatusBadRequest).
					ExpectHeader("X-Platform-Error-Code", errors.EInvalid)
			})
		}
	})
}

func TestCarHandler_CreateCar(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		f := newFixture(t)

		f.cars.EXPECT().
			CreateCar(gomock.Any(), catalog.CarCreate{
				BrandID:     brandID,
				Series:      "Golf",
				Color:       "blue",
				Year:        2020,
				FuelType:    catalog.FuelDiesel,
				Condition:   catalog.ConditionUsed,
				Mileage:     40000,
				EnginePower: "110 kW",
			}).
			Return(testCar, nil)

		testttp.PostJSON(t, "/", carCreateBody()).
			Do(f.handler).
			ExpectStatus(http.StatusCreated).
			ExpectBody(func(buf *bytes.Buffer) {
				var got catalog.Car
				require.NoError(t, json.NewDecoder(buf).Decode(&got))
				require.Equal(t, *testCar, got)
			})
	})

	t.Run("unknown brand returns 400", func(t *testing.T) {
		f := newFixture(t)

		f.cars.EXPECT().
			CreateCar(gomock.Any(), gomock.Any()).
			Return(nil, catalog.ErrCarBrandInvalid)

		testttp.PostJSON(t, "/", carCreateBody()).
			Do(f.handler).
			ExpectStatus(http.StatusBadRequest).
			ExpectBody(func(buf *bytes.Buffer) {
				assert.Contains(t, buf.String(), "brand ID is missing or invalid")
			})
	})

	t.Run("malformed brand id is rejected by the decoder", func(t *testing.T) {
		f := newFixture(t)

		body := carCreateBody()
		body["brandID"] = "42"

		testttp.PostJSON(t, "/", body).
			Do(f.handler).
			ExpectStatus(http.StatusBadRequest)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		f := newFixture(t)

		body := carCreateBody()
		body["price"] = 9999

		testttp.PostJSON(t, "/", body).
			Do(f.handler).
			ExpectStatus(http.StatusBadRequest)
	})
}

func TestCarHandler_GetCar(t *testing.T) {
	f := newFixture(t)

	f.cars.EXPECT().
		GetCar(gomock.Any(), carID).
		Return(testCar, nil)

	testttp.Get(t, "/"+carIDStr).
		Do(f.handler).
		ExpectStatus(http.StatusOK)

	testttp.Get(t, "/not-a-uuid").
		Do(f.handler).
		ExpectStatus(http.StatusBadRequest)
}

func TestCarHandler_UpdateCar(t *testing.T) {
	f := newFixture(t)

	inactive := false
	f.cars.EXPECT().
		UpdateCar(gomock.Any(), carID, catalog.CarUpdate{
			BrandID:     brandID,
			Series:      "Golf",
			Color:       "blue",
			Year:        2020,
			FuelType:    catalog.FuelDiesel,
			Condition:   catalog.ConditionUsed,
			Mileage:     40000,
			EnginePower: "110 kW",
			IsActive:    &inactive,
		}).
		Return(testCar, nil)

	body := carCreateBody()
	body["isActive"] = false

	testttp.PutJSON(t, "/"+carIDStr, body).
		Do(f.handler).
		ExpectStatus(http.StatusOK)
}

func TestCarHandler_DeleteCar(t *testing.T) {
	t.Run("inactive car", func(t *testing.T) {
		f := newFixture(t)

		f.cars.EXPECT().
			DeleteCar(gomock.Any(), carID).
			Return(nil)

		testttp.Delete(t, "/"+carIDStr).
			Do(f.handler).
			ExpectStatus(http.StatusNoContent)
	})

	t.Run("active car returns 409", func(t *testing.T) {
		f := newFixture(t)

		f.cars.EXPECT().
			DeleteCar(gomock.Any(), carID).
			Return(catalog.ErrCarActive)

		testttp.Delete(t, "/"+carIDStr).
			Do(f.handler).
			ExpectStatus(http.StatusConflict).
			ExpectHeader("X-Platform-Error-Code", errors.EConflict)
	})
}

func TestCarHandler_Export(t *testing.T) {
	brand := &catalog.Brand{ID: brandID, Name: "Volkswagen"}

	t.Run("plain", func(t *testing.T) {
		f := newFixture(t)

		f.brands.EXPECT().
			ListBrands(gomock.Any(), catalog.BrandFilter{}).
			Return([]*catalog.Brand{brand}, nil)
		f.cars.EXPECT().
			ListCars(gomock.Any(), catalog.CarFilter{}).
			Return([]*catalog.Car{testCar}, nil)

		testttp.Get(t, "/export").
			Do(f.handler).
			ExpectStatus(http.StatusOK).
			ExpectHeader("Content-Type", "text/csv; charset=utf-8").
			ExpectBody(func(buf *bytes.Buffer) {
				want := "id,brand,series,color,year,fuelType,condition,mileage,enginePower,isActive\n" +
					carIDStr + ",Volkswagen,Golf,blue,2020,diesel,used,40000,110 kW,true\n"
				require.Equal(t, want, buf.String())
			})
	})

	t.Run("gzip when accepted", func(t *testing.T) {
		f := newFixture(t)

		cs := make([]*catalog.Car, 100)
		for i := range cs {
			c := *testCar
			c.ID = mock.SequentialID(1000 + i)
			cs[i] = &c
		}
		f.brands.EXPECT().
			ListBrands(gomock.Any(), gomock.Any()).
			Return([]*catalog.Brand{brand}, nil)
		f.cars.EXPECT().
			ListCars(gomock.Any(), gomock.Any()).
			Return(cs, nil)

		testttp.Get(t, "/export").
			Headers("Accept-Encoding", "gzip").
			Do(f.handler).
			ExpectStatus(http.StatusOK).
			ExpectHeader("Content-Encoding", "gzip").
			ExpectBody(func(buf *bytes.Buffer) {
				gr, err := gzip.NewReader(buf)
				require.NoError(t, err)
				b, err := io.ReadAll(gr)
				require.NoError(t, err)
				lines := strings.Split(strings.TrimSpace(string(b)), "\n")
				require.Len(t, lines, 101)
			})
	})

	t.Run("service error before any output", func(t *testing.T) {
		f := newFixture(t)

		f.brands.EXPECT().
			ListBrands(gomock.Any(), gomock.Any()).
			Return(nil, errors.Internal(catalog.OpListBrands, fmt.Errorf("disk on fire")))

		testttp.Get(t, "/export").
			Do(f.handler).
			ExpectStatus(http.StatusInternalServerError).
			ExpectHeader("Content-Type", "application/json; charset=utf-8")
	})
}

func TestCarHandler_Import(t *testing.T) {
	const body = "brand,series,color,year,fuelType,condition,mileage,enginePower\n" +
		"Volkswagen,Golf,blue,2020,diesel,used,40000,110 kW\n"

	expectImport := func(f fixture) {
		f.brands.EXPECT().
			ListBrands(gomock.Any(), gomock.Any()).
			Return([]*catalog.Brand{}, nil)
		f.brands.EXPECT().
			CreateBrand(gomock.Any(), catalog.BrandCreate{Name: "Volkswagen"}).
			Return(&catalog.Brand{ID: brandID, Name: "Volkswagen"}, nil)
		f.cars.EXPECT().
			CreateCar(gomock.Any(), catalog.CarCreate{
				BrandID:     brandID,
				Series:      "Golf",
				Color:       "blue",
				Year:        2020,
				FuelType:    catalog.FuelDiesel,
				Condition:   catalog.ConditionUsed,
				Mileage:     40000,
				EnginePower: "110 kW",
			}).
			Return(testCar, nil)
	}

	t.Run("plain", func(t *testing.T) {
		f := newFixture(t)
		expectImport(f)

		testttp.Post(t, "/import", strings.NewReader(body)).
			Headers("Content-Type", "text/csv").
			Do(f.handler).
			ExpectStatus(http.StatusOK).
			ExpectBody(func(buf *bytes.Buffer) {
				require.JSONEq(t, `{"imported":1}`, buf.String())
			})
	})

	t.Run("gzip", func(t *testing.T) {
		f := newFixture(t)
		expectImport(f)

		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		_, err := gw.Write([]byte(body))
		require.NoError(t, err)
		require.NoError(t, gw.Close())

		testttp.Post(t, "/import", &buf).
			Headers("Content-Type", "text/csv", "Content-Encoding", "gzip").
			Do(f.handler).
			ExpectStatus(http.StatusOK).
			ExpectBody(func(buf *bytes.Buffer) {
				require.JSONEq(t, `{"imported":1}`, buf.String())
			})
	})

	t.Run("bad row", func(t *testing.T) {
		f := newFixture(t)

		testttp.Post(t, "/import", strings.NewReader("brand,series\nVW,Golf\n")).
			Do(f.handler).
			ExpectStatus(http.StatusBadRequest).
			ExpectBody(func(buf *bytes.Buffer) {
				assert.Contains(t, buf.String(), `csv header is missing column \"color\"`)
			})
	})

	t.Run("short row names its line", func(t *testing.T) {
		f := newFixture(t)

		short := "brand,series,color,year,fuelType,condition,mileage,enginePower\n" +
			"BMW,320i,black,2019\n"
		testttp.Post(t, "/import", strings.NewReader(short)).
			Do(f.handler).
			ExpectStatus(http.StatusBadRequest).
			ExpectBody(func(buf *bytes.Buffer) {
				var e errors.Error
				require.NoError(t, json.Unmarshal(buf.Bytes(), &e))
				assert.Equal(t, errors.EInvalid, e.Code)
				assert.Equal(t, "line 2: malformed csv: wrong number of fields", e.Msg)
			})
	})

	t.Run("failure after committed rows reports the count", func(t *testing.T) {
		f := newFixture(t)
		expectImport(f)

		in := body + "Volkswagen,Polo,red,2020,steam,new,0,70 kW\n"
		testttp.Post(t, "/import", strings.NewReader(in)).
			Do(f.handler).
			ExpectStatus(http.StatusBadRequest).
			ExpectBody(func(buf *bytes.Buffer) {
				var e errors.Error
				require.NoError(t, json.Unmarshal(buf.Bytes(), &e))
				assert.Equal(t, `line 3: invalid fuel type "steam" (1 rows imported)`, e.Msg)
			})
	})
}
