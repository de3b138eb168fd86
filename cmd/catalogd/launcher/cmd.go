package launcher

import (
	"context"
	"time"

	"github.com/carcatalog/catalog/kit/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

// NewCommand creates the catalogd root command. Running it serves the API
// until ctx is cancelled.
func NewCommand(ctx context.Context, v *viper.Viper) (*cobra.Command, error) {
	cfg := NewConfig()
	opts := cfg.Opts()

	prog := cli.Program{
		Name: serviceName,
		Opts: opts,
		Run: func() error {
			return NewLauncher().Run(ctx, cfg)
		},
	}
	cmd, err := cli.NewCommand(v, &prog)
	if err != nil {
		return nil, err
	}
	cmd.Short = "Start the car catalog server"
	cmd.SilenceUsage = true

	cmd.AddCommand(
		newPrintConfigCommand(opts),
		newExportCommand(ctx, cfg),
		newImportCommand(ctx, cfg),
	)
	return cmd, nil
}
