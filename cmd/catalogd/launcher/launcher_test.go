package launcher_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/carcatalog/catalog"
	"github.com/carcatalog/catalog/cmd/catalogd/launcher"
	"github.com/carcatalog/catalog/kit/platform/errors"
	kithttp "github.com/carcatalog/catalog/kit/transport/http"
	"github.com/carcatalog/catalog/logger"
	"github.com/carcatalog/catalog/sqlstore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// Default context.
var ctx = context.Background()

func newTestConfig() *launcher.Config {
	cfg := launcher.NewConfig()
	cfg.LogLevel = zapcore.ErrorLevel
	cfg.LogFormat = logger.FormatLogfmt
	cfg.HTTPBindAddress = "127.0.0.1:0"
	cfg.SQLitePath = sqlstore.InmemPath
	return cfg
}

func startLauncher(t *testing.T, cfg *launcher.Config) *launcher.Launcher {
	t.Helper()

	l := launcher.NewLauncher()
	l.Stdout = io.Discard
	require.NoError(t, l.Start(ctx, cfg))
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		require.NoError(t, l.Shutdown(shutdownCtx))
	})
	return l
}

type client struct {
	t    *testing.T
	base string
	http *nethttp.Client
}

func (c *client) send(method, path string, body io.Reader) *nethttp.Response {
	c.t.Helper()

	req, err := nethttp.NewRequest(method, c.base+path, body)
	require.NoError(c.t, err)

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	return resp
}

func (c *client) do(method, path string, body interface{}) (int, []byte) {
	c.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}
	resp := c.send(method, path, r)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, out
}

// check sends the request and decodes an error response.
func (c *client) check(method, path string, body io.Reader) error {
	c.t.Helper()

	resp := c.send(method, path, body)
	defer resp.Body.Close()
	return kithttp.CheckError(resp)
}

func TestLauncher_CatalogOverHTTP(t *testing.T) {
	l := startLauncher(t, newTestConfig())
	c := &client{t: t, base: l.URL(), http: &nethttp.Client{Timeout: 5 * time.Second}}

	code, body := c.do(nethttp.MethodPost, "/api/v1/brands", map[string]string{"name": "Toyota"})
	require.Equal(t, nethttp.StatusCreated, code, string(body))
	var brand catalog.Brand
	require.NoError(t, json.Unmarshal(body, &brand))
	require.Equal(t, "Toyota", brand.Name)

	err := c.check(nethttp.MethodPost, "/api/v1/brands", strings.NewReader(`{"name":"toyota"}`))
	require.Equal(t, errors.EConflict, errors.ErrorCode(err))
	require.Equal(t, `brand "toyota" already exists`, errors.ErrorMessage(err))

	code, body = c.do(nethttp.MethodPost, "/api/v1/cars", map[string]interface{}{
		"brandID":     brand.ID,
		"series":      "Corolla",
		"color":       "white",
		"year":        2020,
		"fuelType":    catalog.FuelPetrol,
		"condition":   catalog.ConditionUsed,
		"mileage":     12000,
		"enginePower": "97 kW",
	})
	require.Equal(t, nethttp.StatusCreated, code, string(body))
	var car catalog.Car
	require.NoError(t, json.Unmarshal(body, &car))
	require.True(t, car.IsActive)
	require.Equal(t, brand.ID, car.BrandID)

	code, body = c.do(nethttp.MethodGet, "/api/v1/cars?brandID="+brand.ID.String(), nil)
	require.Equal(t, nethttp.StatusOK, code, string(body))
	var list struct {
		Cars []catalog.Car `json:"cars"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Cars, 1)

	err = c.check(nethttp.MethodDelete, "/api/v1/cars/"+car.ID.String(), nil)
	require.Equal(t, errors.EConflict, errors.ErrorCode(err), "active cars cannot be deleted")
	require.Equal(t, catalog.ErrCarActive.Msg, errors.ErrorMessage(err))

	code, body = c.do(nethttp.MethodGet, "/api/v1/cars/export", nil)
	require.Equal(t, nethttp.StatusOK, code)
	require.Contains(t, string(body), ",Toyota,Corolla,white,2020,petrol,used,12000,97 kW,true")

	code, _ = c.do(nethttp.MethodDelete, "/api/v1/brands/"+brand.ID.String(), nil)
	require.Equal(t, nethttp.StatusNoContent, code)

	code, _ = c.do(nethttp.MethodGet, "/api/v1/cars/"+car.ID.String(), nil)
	require.Equal(t, nethttp.StatusNotFound, code, "deleting a brand removes its cars")

	code, body = c.do(nethttp.MethodGet, "/api/v1/nothing", nil)
	require.Equal(t, nethttp.StatusNotFound, code)
	assert.JSONEq(t, `{"code":"not found","message":"path not found"}`, string(body))
}

func TestLauncher_ImportOverHTTP(t *testing.T) {
	l := startLauncher(t, newTestConfig())
	c := &client{t: t, base: l.URL(), http: &nethttp.Client{Timeout: 5 * time.Second}}

	in := "brand,series,color,year,fuelType,condition,mileage,enginePower\n" +
		"Şahin,Doğan,beyaz,1994,lpg,used,210000,60 kW\n" +
		"BMW,320i,black,2019\n"

	err := c.check(nethttp.MethodPost, "/api/v1/cars/import", strings.NewReader(in))
	require.Equal(t, errors.EInvalid, errors.ErrorCode(err))
	require.Equal(t, "line 3: malformed csv: wrong number of fields (1 rows imported)", errors.ErrorMessage(err))

	brands, err := l.BrandService().ListBrands(ctx, catalog.BrandFilter{})
	require.NoError(t, err)
	require.Len(t, brands, 1)
	require.Equal(t, "Şahin", brands[0].Name)
}

func TestLauncher_SystemEndpoints(t *testing.T) {
	l := startLauncher(t, newTestConfig())
	c := &client{t: t, base: l.URL(), http: &nethttp.Client{Timeout: 5 * time.Second}}

	code, _ := c.do(nethttp.MethodGet, "/ready", nil)
	assert.Equal(t, nethttp.StatusOK, code)

	code, body := c.do(nethttp.MethodGet, "/health", nil)
	assert.Equal(t, nethttp.StatusOK, code)
	assert.Contains(t, string(body), `"name":"store"`)

	code, _ = c.do(nethttp.MethodGet, "/api/v1/brands", nil)
	assert.Equal(t, nethttp.StatusOK, code)

	code, body = c.do(nethttp.MethodGet, "/metrics", nil)
	assert.Equal(t, nethttp.StatusOK, code)
	for _, name := range []string{
		"http_api_requests_total",
		"go_sql_max_open_connections",
		"go_goroutines",
	} {
		assert.Contains(t, string(body), name)
	}
}

func TestLauncher_RateLimit(t *testing.T) {
	cfg := newTestConfig()
	cfg.HTTPRateLimit = 0.001
	cfg.HTTPRateBurst = 1

	l := startLauncher(t, cfg)
	c := &client{t: t, base: l.URL(), http: &nethttp.Client{Timeout: 5 * time.Second}}

	code, _ := c.do(nethttp.MethodGet, "/api/v1/brands", nil)
	require.Equal(t, nethttp.StatusOK, code)
	code, _ = c.do(nethttp.MethodGet, "/api/v1/brands", nil)
	require.Equal(t, nethttp.StatusTooManyRequests, code)
}

func TestLauncher_StartErrors(t *testing.T) {
	tests := []struct {
		name    string
		mod     func(*launcher.Config)
		wantErr string
	}{
		{
			name:    "unknown driver",
			mod:     func(c *launcher.Config) { c.StoreDriver = "mysql" },
			wantErr: `unknown store-driver "mysql"; expected sqlite3 or postgres`,
		},
		{
			name:    "postgres without dsn",
			mod:     func(c *launcher.Config) { c.StoreDriver = sqlstore.DriverPostgres },
			wantErr: `postgres-dsn is required with store-driver "postgres"`,
		},
		{
			name:    "unknown tracing type",
			mod:     func(c *launcher.Config) { c.TracingType = "zipkin" },
			wantErr: `unknown tracing type "zipkin"`,
		},
		{
			name:    "unknown log format",
			mod:     func(c *launcher.Config) { c.LogFormat = "xml" },
			wantErr: "unknown logging format: xml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig()
			tt.mod(cfg)

			l := launcher.NewLauncher()
			l.Stdout = io.Discard
			err := l.Start(ctx, cfg)
			require.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestLauncher_DoneFollowsContext(t *testing.T) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	l := launcher.NewLauncher()
	l.Stdout = io.Discard
	require.NoError(t, l.Start(runCtx, newTestConfig()))

	cancel()
	select {
	case <-l.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("launcher did not notice the cancelled context")
	}
	require.NoError(t, l.Shutdown(ctx))
}

func newCommand(t *testing.T) *cobra.Command {
	t.Helper()

	cmd, err := launcher.NewCommand(ctx, viper.New())
	require.NoError(t, err)
	return cmd
}

func TestCommand_ImportExport(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CATALOGD_CONFIG_PATH", dir)
	t.Setenv("CATALOGD_SQLITE_PATH", dir+"/catalog.sqlite")
	t.Setenv("CATALOGD_LOG_LEVEL", "error")

	input := strings.Join([]string{
		"brand,series,color,year,fuelType,condition,mileage,enginePower",
		"Honda,Civic,blue,2019,diesel,used,50000,88 kW",
		"honda,Jazz,red,2021,petrol,new,0,72 kW",
	}, "\n") + "\n"

	var stdout, stderr bytes.Buffer
	cmd := newCommand(t)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"import"})
	require.NoError(t, cmd.Execute(), stderr.String())
	require.Contains(t, stderr.String(), "imported 2 cars")

	stdout.Reset()
	stderr.Reset()
	cmd = newCommand(t)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"export"})
	require.NoError(t, cmd.Execute(), stderr.String())
	require.Contains(t, stderr.String(), "exported 2 cars")

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "id,brand,series,color,year,fuelType,condition,mileage,enginePower,isActive", lines[0])
	require.True(t, strings.HasSuffix(lines[1], ",Honda,Civic,blue,2019,diesel,used,50000,88 kW,true"), lines[1])
	require.True(t, strings.HasSuffix(lines[2], ",Honda,Jazz,red,2021,petrol,new,0,72 kW,true"), lines[2])
}

func TestCommand_ImportReportsLine(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CATALOGD_CONFIG_PATH", dir)
	t.Setenv("CATALOGD_LOG_LEVEL", "error")

	input := "brand,series,color,year,fuelType,condition,mileage,enginePower\n" +
		"Honda,Civic,blue,2019,diesel,used,50000,88 kW\n" +
		"Honda,Jazz,red,2021,steam,new,0,72 kW\n"

	var stderr bytes.Buffer
	cmd := newCommand(t)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(io.Discard)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"import", "--sqlite-path", dir + "/catalog.sqlite"})

	err := cmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 3")
	require.Contains(t, stderr.String(), "imported 1 cars")
}

func TestCommand_ExportFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CATALOGD_CONFIG_PATH", dir)
	t.Setenv("CATALOGD_SQLITE_PATH", dir+"/catalog.sqlite")
	t.Setenv("CATALOGD_LOG_LEVEL", "error")

	t.Run("writes the file", func(t *testing.T) {
		out := dir + "/cars.csv"

		var stderr bytes.Buffer
		cmd := newCommand(t)
		cmd.SetOut(io.Discard)
		cmd.SetErr(&stderr)
		cmd.SetArgs([]string{"export", "--file", out})
		require.NoError(t, cmd.Execute(), stderr.String())
		require.Contains(t, stderr.String(), "exported 0 cars")

		b, err := os.ReadFile(out)
		require.NoError(t, err)
		require.Equal(t, "id,brand,series,color,year,fuelType,condition,mileage,enginePower,isActive\n", string(b))
	})

	t.Run("no file when the store cannot open", func(t *testing.T) {
		out := dir + "/never.csv"

		cmd := newCommand(t)
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"export", "--file", out, "--store-driver", "postgres"})
		require.EqualError(t, cmd.Execute(), `postgres-dsn is required with store-driver "postgres"`)

		_, err := os.Stat(out)
		require.True(t, os.IsNotExist(err), "export left %s behind", out)
	})
}
