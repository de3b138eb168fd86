package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Opt is a single command-line option
type Opt struct {
	DestP interface{} // pointer to the destination

	EnvVar     string
	Flag       string
	Hidden     bool
	Persistent bool
	Required   bool
	Short      rune // using rune b/c it guarantees correctness. a short must always be a string of length 1

	Default interface{}
	Desc    string
}

// Program parses CLI options
type Program struct {
	// Run is invoked by cobra on execute.
	Run func() error
	// Name is the name of the program in help usage and the env var prefix.
	Name string
	// Opts are the command line/env var options to the program
	Opts []Opt
}

// NewCommand creates a new cobra command to be executed that respects env vars.
//
// Uses the upper-case version of the program's name as a prefix
// to all environment variables.
//
// This is to simplify the viper/cobra boilerplate.
func NewCommand(v *viper.Viper, p *Program) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:  p.Name,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return p.Run()
		},
	}

	v.SetEnvPrefix(strings.ToUpper(p.Name))
	v.AutomaticEnv()
	// This normalizes "-" to an underscore in env names.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// done before we bind flags to viper keys.
	// order of precedence (1 highest -> 3 lowest):
	//	1. flags
	//  2. env vars
	//	3. config file
	if err := initializeConfig(v, p.Name); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if err := BindOptions(v, cmd, p.Opts); err != nil {
		return nil, fmt.Errorf("failed to bind config options: %w", err)
	}

	return cmd, nil
}

// configFileExtensions are tried in order when the config path is a directory.
var configFileExtensions = []string{"json", "toml", "yaml", "yml"}

func initializeConfig(v *viper.Viper, name string) error {
	configPath := os.Getenv(strings.ToUpper(name) + "_CONFIG_PATH")
	if configPath == "" {
		// Default to looking in the working directory of the running process.
		configPath = "."
	}

	fi, err := os.Stat(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	if fi.IsDir() {
		configFile, ok := findConfigFile(configPath)
		if !ok {
			return nil
		}
		configPath = configFile
	}

	v.SetConfigFile(configPath)
	return v.ReadInConfig()
}

func findConfigFile(dir string) (string, bool) {
	for _, ext := range configFileExtensions {
		p := filepath.Join(dir, "config."+ext)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, true
		}
	}
	return "", false
}

// BindOptions adds opts to the specified command and automatically
// registers those options with viper.
func BindOptions(v *viper.Viper, cmd *cobra.Command, opts []Opt) error {
	for _, o := range opts {
		flagset := cmd.Flags()
		if o.Persistent {
			flagset = cmd.PersistentFlags()
		}
		hasShort := o.Short != 0

		switch destP := o.DestP.(type) {
		case *string:
			var d string
			if o.Default != nil {
				d = o.Default.(string)
			}
			if hasShort {
				flagset.StringVarP(destP, o.Flag, string(o.Short), d, o.Desc)
			} else {
				flagset.StringVar(destP, o.Flag, d, o.Desc)
			}
			if err := bindFlag(v, flagset, &o); err != nil {
				return err
			}
			*destP = v.GetString(o.Flag)
		case *int:
			var d int
			if o.Default != nil {
				d = o.Default.(int)
			}
			if hasShort {
				flagset.IntVarP(destP, o.Flag, string(o.Short), d, o.Desc)
			} else {
				flagset.IntVar(destP, o.Flag, d, o.Desc)
			}
			if err := bindFlag(v, flagset, &o); err != nil {
				return err
			}
			*destP = v.GetInt(o.Flag)
		case *int32:
			var d int32
			if o.Default != nil {
				// N.B. since our CLI kit types default values as interface{} and
				// literal numbers get typed as int by default, it's very easy to
				// create an int32 CLI flag with an int default value.
				//
				// The compiler doesn't know to complain in that case, so you end up
				// with a runtime panic when trying to bind the CLI options.
				//
				// To avoid that headache, we support both int32 and int defaults
				// for int32 fields.
				switch defaultT := o.Default.(type) {
				case int32:
					d = defaultT
				case int:
					d = int32(defaultT)
				default:
					return fmt.Errorf("invalid default type %T for int32 flag %q", o.Default, o.Flag)
				}
			}
			if hasShort {
				flagset.Int32VarP(destP, o.Flag, string(o.Short), d, o.Desc)
			} else {
				flagset.Int32Var(destP, o.Flag, d, o.Desc)
			}
			if err := bindFlag(v, flagset, &o); err != nil {
				return err
			}
			*destP = v.GetInt32(o.Flag)
		case *int64:
			var d int64
			if o.Default != nil {
				// N.B. see comment above for int32
				switch defaultT := o.Default.(type) {
				case int64:
					d = defaultT
				case int:
					d = int64(defaultT)
				default:
					return fmt.Errorf("invalid default type %T for int64 flag %q", o.Default, o.Flag)
				}
			}
			if hasShort {
				flagset.Int64VarP(destP, o.Flag, string(o.Short), d, o.Desc)
			} else {
				flagset.Int64Var(destP, o.Flag, d, o.Desc)
			}
			if err := bindFlag(v, flagset, &o); err != nil {
				return err
			}
			*destP = v.GetInt64(o.Flag)
		case *float64:
			var d float64
			if o.Default != nil {
				d = o.Default.(float64)
			}
			if hasShort {
				flagset.Float64VarP(destP, o.Flag, string(o.Short), d, o.Desc)
			} else {
				flagset.Float64Var(destP, o.Flag, d, o.Desc)
			}
			if err := bindFlag(v, flagset, &o); err != nil {
				return err
			}
			*destP = v.GetFloat64(o.Flag)
		case *bool:
			var d bool
			if o.Default != nil {
				d = o.Default.(bool)
			}
			if hasShort {
				flagset.BoolVarP(destP, o.Flag, string(o.Short), d, o.Desc)
			} else {
				flagset.BoolVar(destP, o.Flag, d, o.Desc)
			}
			if err := bindFlag(v, flagset, &o); err != nil {
				return err
			}
			*destP = v.GetBool(o.Flag)
		case *time.Duration:
			var d time.Duration
			if o.Default != nil {
				d = o.Default.(time.Duration)
			}
			if hasShort {
				flagset.DurationVarP(destP, o.Flag, string(o.Short), d, o.Desc)
			} else {
				flagset.DurationVar(destP, o.Flag, d, o.Desc)
			}
			if err := bindFlag(v, flagset, &o); err != nil {
				return err
			}
			*destP = v.GetDuration(o.Flag)
		case *[]string:
			var d []string
			if o.Default != nil {
				d = o.Default.([]string)
			}
			if hasShort {
				flagset.StringSliceVarP(destP, o.Flag, string(o.Short), d, o.Desc)
			} else {
				flagset.StringSliceVar(destP, o.Flag, d, o.Desc)
			}
			if err := bindFlag(v, flagset, &o); err != nil {
				return err
			}
			*destP = v.GetStringSlice(o.Flag)
		case *zapcore.Level:
			d := zapcore.InfoLevel
			if o.Default != nil {
				d = o.Default.(zapcore.Level)
			}
			if hasShort {
				LevelVarP(flagset, destP, o.Flag, string(o.Short), d, o.Desc)
			} else {
				LevelVar(flagset, destP, o.Flag, d, o.Desc)
			}
			if err := bindFlag(v, flagset, &o); err != nil {
				return err
			}
			if s := v.GetString(o.Flag); s != "" {
				if err := destP.Set(s); err != nil {
					return fmt.Errorf("invalid value %q for %q: %w", s, o.Flag, err)
				}
			}
		case pflag.Value:
			if o.Default != nil {
				if err := destP.Set(fmt.Sprint(o.Default)); err != nil {
					return fmt.Errorf("invalid default %v for %q: %w", o.Default, o.Flag, err)
				}
			}
			if hasShort {
				flagset.VarP(destP, o.Flag, string(o.Short), o.Desc)
			} else {
				flagset.Var(destP, o.Flag, o.Desc)
			}
			if err := bindFlag(v, flagset, &o); err != nil {
				return err
			}
			if s := v.GetString(o.Flag); s != "" {
				if err := destP.Set(s); err != nil {
					return fmt.Errorf("invalid value %q for %q: %w", s, o.Flag, err)
				}
			}
		default:
			// if you get this error, sorry about that!
			// anyway, go ahead and make a PR and add another type.
			return fmt.Errorf("unknown destination type %T", o.DestP)
		}
	}
	return nil
}

func bindFlag(v *viper.Viper, flagset *pflag.FlagSet, o *Opt) error {
	// must run before BindPFlag, which makes the flag default visible to IsSet.
	if o.Required && !v.IsSet(o.Flag) {
		if err := cobra.MarkFlagRequired(flagset, o.Flag); err != nil {
			return err
		}
	}
	if o.Hidden {
		if err := flagset.MarkHidden(o.Flag); err != nil {
			return err
		}
	}
	if err := v.BindPFlag(o.Flag, flagset.Lookup(o.Flag)); err != nil {
		return err
	}
	if o.EnvVar != "" {
		if err := v.BindEnv(o.Flag, o.EnvVar); err != nil {
			return err
		}
	}
	return nil
}
