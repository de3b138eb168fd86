package launcher

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/carcatalog/catalog/kit/cli"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Supported print-config output formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatJSON = "json"
)

func newPrintConfigCommand(opts []cli.Opt) *cobra.Command {
	var (
		keyName string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "print-config",
		Short: "Print the effective configuration of catalogd",
		Long: `Print config (in YAML, TOML or JSON) that catalogd would use if run with the
current flags, environment variables and config file.

The output can be saved as config.yaml, config.toml or config.json in the
directory named by CATALOGD_CONFIG_PATH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if keyName != "" {
				return printOneConfigRunE(opts, keyName, cmd.OutOrStdout())
			}
			return printAllConfigRunE(opts, format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&keyName, "key-name", "", "config key name; if set, only the resolved value of that key will be printed")
	cmd.Flags().StringVar(&format, "format", FormatYAML, fmt.Sprintf("output format: %s, %s or %s", FormatYAML, FormatTOML, FormatJSON))

	return cmd
}

func printAllConfigRunE(opts []cli.Opt, format string, out io.Writer) error {
	values := make(map[string]interface{}, len(opts))
	for _, o := range opts {
		values[o.Flag] = configValue(o.DestP)
	}

	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(values); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(out).Encode(values)
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	default:
		return fmt.Errorf("unknown format %q; expected %s, %s or %s", format, FormatYAML, FormatTOML, FormatJSON)
	}
}

func printOneConfigRunE(opts []cli.Opt, key string, out io.Writer) error {
	for _, o := range opts {
		if o.Flag != key {
			continue
		}
		_, err := fmt.Fprintln(out, configValue(o.DestP))
		return err
	}
	return fmt.Errorf("key %q not found in config", key)
}

// configValue dereferences an option destination into a value every
// encoder prints the way it is written on the command line.
func configValue(destP interface{}) interface{} {
	switch v := destP.(type) {
	case *string:
		return *v
	case *int:
		return *v
	case *int32:
		return *v
	case *int64:
		return *v
	case *float64:
		return *v
	case *bool:
		return *v
	case *[]string:
		return *v
	case *time.Duration:
		return v.String()
	case *zapcore.Level:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(destP)
	}
}
