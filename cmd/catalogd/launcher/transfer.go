package launcher

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/carcatalog/catalog"
	"github.com/carcatalog/catalog/carcsv"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func newExportCommand(ctx context.Context, cfg *Config) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every car in the catalog as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cw := &countingWriter{w: cmd.OutOrStdout()}
			n, err := withServices(ctx, cfg, cmd.ErrOrStderr(), func(ctx context.Context, svcs services) (n int, err error) {
				// The file is only created once the store is open.
				if path != "" && path != "-" {
					f, cerr := os.Create(path)
					if cerr != nil {
						return 0, cerr
					}
					defer func() {
						err = multierr.Append(err, f.Close())
					}()
					cw.w = f
				}
				return carcsv.Export(ctx, cw, svcs.cars, svcs.brands)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d cars (%s)\n", n, humanize.Bytes(cw.n))
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "file to write; standard output when empty or -")

	return cmd
}

func newImportCommand(ctx context.Context, cfg *Config) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create cars from CSV, creating missing brands by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if path != "" && path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			n, err := withServices(ctx, cfg, cmd.ErrOrStderr(), func(ctx context.Context, svcs services) (int, error) {
				return carcsv.Import(ctx, in, svcs.cars, svcs.brands)
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "imported %d cars\n", n)
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "file to read; standard input when empty or -")

	return cmd
}

type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n)
	return n, err
}

type services struct {
	brands catalog.BrandService
	cars   catalog.CarService
}

// withServices opens the configured store for the duration of fn.
func withServices(ctx context.Context, cfg *Config, logOut io.Writer, fn func(context.Context, services) (int, error)) (n int, err error) {
	log, err := newLogger(cfg, logOut)
	if err != nil {
		return 0, err
	}
	defer func() { _ = log.Sync() }()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	var svcs services
	svcs.brands, svcs.cars = newServices(log.With(zap.String("command", "transfer")), store)
	return fn(ctx, svcs)
}
