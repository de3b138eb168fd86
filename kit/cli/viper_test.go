package cli

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type onOff bool

func (c onOff) String() string {
	if c {
		return "on"
	}
	return "off"
}

func (c *onOff) Set(s string) error {
	switch s {
	case "on":
		*c = true
	case "off":
		*c = false
	default:
		return fmt.Errorf("expected on or off, got %q", s)
	}
	return nil
}

func (c *onOff) Type() string {
	return "on-off"
}

func ExampleNewCommand() {
	var bindAddress string
	var burst int
	var maxConns int32
	var maxBodyBytes int64
	var rateLimit float64
	var pretty bool
	var timeout time.Duration
	var origins []string
	var gzip onOff
	var logLevel zapcore.Level
	cmd, err := NewCommand(viper.New(), &Program{
		Run: func() error {
			fmt.Println(bindAddress)
			for i := 0; i < burst; i++ {
				fmt.Printf("%d\n", i)
			}
			fmt.Println(maxBodyBytes - int64(maxConns))
			fmt.Println(rateLimit)
			fmt.Println(pretty)
			fmt.Println(timeout)
			fmt.Println(origins)
			fmt.Println(gzip)
			fmt.Println(logLevel.String())
			return nil
		},
		Name: "exampleprogram",
		Opts: []Opt{
			{
				DestP:   &bindAddress,
				Flag:    "http-bind-address",
				Default: ":8000",
				Desc:    "address to serve the catalog API on",
			},
			{
				DestP:   &burst,
				Flag:    "burst",
				Default: 2,
				Desc:    "requests allowed in a burst",
			},
			{
				DestP:   &maxConns,
				Flag:    "max-conns",
				Default: math.MaxInt32,
				Desc:    "limited size number",
			},
			{
				DestP:   &maxBodyBytes,
				Flag:    "max-body-bytes",
				Default: math.MaxInt64,
				Desc:    "explicitly expanded-size number",
			},
			{
				DestP:   &rateLimit,
				Flag:    "rate-limit",
				Default: 2.5,
				Desc:    "requests per second",
			},
			{
				DestP:   &pretty,
				Flag:    "pretty",
				Default: true,
				Desc:    "indent JSON responses",
			},
			{
				DestP:   &timeout,
				Flag:    "timeout",
				Default: time.Minute,
				Desc:    "how long to wait",
			},
			{
				DestP:   &origins,
				Flag:    "origins",
				Default: []string{"a.example", "b.example"},
				Desc:    "things come in lists",
			},
			{
				DestP:   &gzip,
				Flag:    "gzip",
				Default: "on",
				Desc:    "things that implement pflag.Value",
			},
			{
				DestP:   &logLevel,
				Flag:    "log-level",
				Default: zapcore.WarnLevel,
			},
		},
	})
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return
	}

	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
	}
	// Output:
	// :8000
	// 0
	// 1
	// 9223372034707292160
	// 2.5
	// true
	// 1m0s
	// [a.example b.example]
	// on
	// warn
}

func Test_NewProgram(t *testing.T) {
	config := map[string]string{
		// config values should be same as flags
		"store-driver":   "postgres",
		"sqlite-path":    "catalog.db",
		"max-conns":      "2147483647",
		"max-body-bytes": "9223372036854775807",
		"log-level":      "debug",
	}

	tests := []struct {
		name      string
		envVarVal string
		args      []string
		expected  string
	}{
		{
			name:     "no vals reads from config",
			expected: "postgres",
		},
		{
			name:      "reads from env var",
			envVarVal: "sqlite3",
			expected:  "sqlite3",
		},
		{
			name:     "reads from flag",
			args:     []string{"--store-driver=mysql"},
			expected: "mysql",
		},
		{
			name:      "flag has highest precedence",
			envVarVal: "sqlite3",
			args:      []string{"--store-driver=mysql"},
			expected:  "mysql",
		},
	}

	for _, tt := range tests {
		for _, writer := range configWriters {
			fn := func(t *testing.T) {
				testDir := t.TempDir()

				confFile, err := writer.writeFn(testDir, config)
				require.NoError(t, err)

				t.Setenv("TEST_CONFIG_PATH", confFile)
				if tt.envVarVal != "" {
					t.Setenv("TEST_STORE_DRIVER", tt.envVarVal)
				}

				var driver string
				var sqlitePath string
				var maxConns int32
				var maxBodyBytes int64
				var logLevel zapcore.Level
				program := &Program{
					Name: "test",
					Opts: []Opt{
						{
							DestP:    &driver,
							Flag:     "store-driver",
							Required: true,
						},
						{
							DestP: &sqlitePath,
							Flag:  "sqlite-path",
						},
						{
							DestP: &maxConns,
							Flag:  "max-conns",
						},
						{
							DestP: &maxBodyBytes,
							Flag:  "max-body-bytes",
						},
						{
							DestP: &logLevel,
							Flag:  "log-level",
						},
					},
					Run: func() error { return nil },
				}

				cmd, err := NewCommand(viper.New(), program)
				require.NoError(t, err)
				cmd.SetArgs(append([]string{}, tt.args...))
				require.NoError(t, cmd.Execute())

				require.Equal(t, tt.expected, driver)
				assert.Equal(t, "catalog.db", sqlitePath)
				assert.Equal(t, int32(math.MaxInt32), maxConns)
				assert.Equal(t, int64(math.MaxInt64), maxBodyBytes)
				assert.Equal(t, zapcore.DebugLevel, logLevel)
			}

			t.Run(fmt.Sprintf("%s_%s", tt.name, writer.ext), fn)
		}
	}
}

type configWriter func(dir string, config interface{}) (string, error)
type labeledWriter struct {
	ext     string
	writeFn configWriter
}

var configWriters = []labeledWriter{
	{ext: "json", writeFn: writeJSONConfig},
	{ext: "toml", writeFn: writeTOMLConfig},
	{ext: "yml", writeFn: yamlConfigWriter(true)},
	{ext: "yaml", writeFn: yamlConfigWriter(false)},
}

func writeJSONConfig(dir string, config interface{}) (string, error) {
	b, err := json.Marshal(config)
	if err != nil {
		return "", err
	}
	confFile := filepath.Join(dir, "config.json")
	if err := os.WriteFile(confFile, b, 0600); err != nil {
		return "", err
	}
	return confFile, nil
}

func writeTOMLConfig(dir string, config interface{}) (string, error) {
	confFile := filepath.Join(dir, "config.toml")
	w, err := os.OpenFile(confFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", err
	}
	defer w.Close()

	if err := toml.NewEncoder(w).Encode(config); err != nil {
		return "", err
	}

	return confFile, nil
}

func yamlConfigWriter(shortExt bool) configWriter {
	fileName := "config.yaml"
	if shortExt {
		fileName = "config.yml"
	}

	return func(dir string, config interface{}) (string, error) {
		confFile := filepath.Join(dir, fileName)
		w, err := os.OpenFile(confFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err != nil {
			return "", err
		}
		defer w.Close()

		if err := yaml.NewEncoder(w).Encode(config); err != nil {
			return "", err
		}

		return confFile, nil
	}
}

func Test_RequiredFlag(t *testing.T) {
	t.Setenv("TEST_CONFIG_PATH", t.TempDir())

	var driver string
	program := &Program{
		Name: "test",
		Opts: []Opt{
			{
				DestP:    &driver,
				Flag:     "store-driver",
				Required: true,
			},
		},
	}

	cmd, err := NewCommand(viper.New(), program)
	require.NoError(t, err)
	cmd.SetArgs([]string{})
	err = cmd.Execute()
	require.Error(t, err)
	require.Equal(t, `required flag(s) "store-driver" not set`, err.Error())
}

func Test_ConfigPrecedence(t *testing.T) {
	jsonConfig := map[string]interface{}{"log-level": zapcore.DebugLevel}
	tomlConfig := map[string]interface{}{"log-level": zapcore.InfoLevel}
	yamlConfig := map[string]interface{}{"log-level": zapcore.WarnLevel}
	ymlConfig := map[string]interface{}{"log-level": zapcore.ErrorLevel}

	tests := []struct {
		name          string
		writeJSON     bool
		writeTOML     bool
		writeYaml     bool
		writeYml      bool
		expectedLevel zapcore.Level
	}{
		{
			name:          "JSON is used if present",
			writeJSON:     true,
			writeTOML:     true,
			writeYaml:     true,
			writeYml:      true,
			expectedLevel: zapcore.DebugLevel,
		},
		{
			name:          "TOML is used if no JSON present",
			writeTOML:     true,
			writeYaml:     true,
			writeYml:      true,
			expectedLevel: zapcore.InfoLevel,
		},
		{
			name:          "YAML is used if no JSON or TOML present",
			writeYaml:     true,
			writeYml:      true,
			expectedLevel: zapcore.WarnLevel,
		},
		{
			name:          "YML is used if no other option present",
			writeYml:      true,
			expectedLevel: zapcore.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDir := t.TempDir()
			t.Setenv("TEST_CONFIG_PATH", testDir)

			if tt.writeJSON {
				_, err := writeJSONConfig(testDir, jsonConfig)
				require.NoError(t, err)
			}
			if tt.writeTOML {
				_, err := writeTOMLConfig(testDir, tomlConfig)
				require.NoError(t, err)
			}
			if tt.writeYaml {
				_, err := yamlConfigWriter(false)(testDir, yamlConfig)
				require.NoError(t, err)
			}
			if tt.writeYml {
				_, err := yamlConfigWriter(true)(testDir, ymlConfig)
				require.NoError(t, err)
			}

			var logLevel zapcore.Level
			program := &Program{
				Name: "test",
				Opts: []Opt{
					{
						DestP: &logLevel,
						Flag:  "log-level",
					},
				},
				Run: func() error { return nil },
			}

			cmd, err := NewCommand(viper.New(), program)
			require.NoError(t, err)
			cmd.SetArgs([]string{})
			require.NoError(t, cmd.Execute())

			require.Equal(t, tt.expectedLevel, logLevel)
		})
	}
}

func Test_ConfigPathDotDirectory(t *testing.T) {
	testDir := t.TempDir()

	tests := []struct {
		name string
		dir  string
	}{
		{
			name: "dot at start",
			dir:  ".directory",
		},
		{
			name: "dot in middle",
			dir:  "config.d",
		},
		{
			name: "dot at end",
			dir:  "forgotmyextension.",
		},
	}

	config := map[string]string{
		"sqlite-path": "/var/lib/catalogd/catalog.db",
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			configDir := filepath.Join(testDir, tc.dir)
			require.NoError(t, os.Mkdir(configDir, 0700))

			_, err := writeTOMLConfig(configDir, config)
			require.NoError(t, err)
			t.Setenv("TEST_CONFIG_PATH", configDir)

			var sqlitePath string
			program := &Program{
				Name: "test",
				Opts: []Opt{
					{
						DestP: &sqlitePath,
						Flag:  "sqlite-path",
					},
				},
				Run: func() error { return nil },
			}

			cmd, err := NewCommand(viper.New(), program)
			require.NoError(t, err)
			cmd.SetArgs([]string{})
			require.NoError(t, cmd.Execute())

			require.Equal(t, "/var/lib/catalogd/catalog.db", sqlitePath)
		})
	}
}

func Test_ExplicitEnvVar(t *testing.T) {
	t.Setenv("TEST_CONFIG_PATH", t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://catalog@db/catalog")

	var dsn string
	program := &Program{
		Name: "test",
		Opts: []Opt{
			{
				DestP:  &dsn,
				Flag:   "postgres-dsn",
				EnvVar: "DATABASE_URL",
			},
		},
		Run: func() error { return nil },
	}

	cmd, err := NewCommand(viper.New(), program)
	require.NoError(t, err)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	require.Equal(t, "postgres://catalog@db/catalog", dsn)
}

func Test_InvalidLogLevel(t *testing.T) {
	t.Setenv("TEST_CONFIG_PATH", t.TempDir())
	t.Setenv("TEST_LOG_LEVEL", "loud")

	var logLevel zapcore.Level
	_, err := NewCommand(viper.New(), &Program{
		Name: "test",
		Opts: []Opt{{DestP: &logLevel, Flag: "log-level"}},
		Run:  func() error { return nil },
	})
	require.Error(t, err)
}
