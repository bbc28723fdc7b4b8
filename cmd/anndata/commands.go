package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/anndata"
	"github.com/katalvlaran/anndata/blob"
)

// blobScheme addresses a zarr hierarchy in the configured blob store.
const blobScheme = "blob://"

var (
	convertFormat string
	withMatrix    bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Print a summary of a file, directory or blob:// zarr store",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var convertCmd = &cobra.Command{
	Use:   "convert <src> <dst>",
	Short: "Convert between h5ad, zarr, loom and csv",
	Args:  cobra.ExactArgs(2),
	RunE:  runConvert,
}

var exportCmd = &cobra.Command{
	Use:   "export-csv <src> <dir>",
	Short: "Export obs, var and uns (and optionally X) as CSV files",
	Args:  cobra.ExactArgs(2),
	RunE:  runExportCSV,
}

func options() []anndata.Option {
	return append(cfg.Options(), anndata.WithLogger(logger), anndata.WithMetrics(collector))
}

func load(ctx context.Context, src string) (*anndata.AnnData, error) {
	if prefix, ok := strings.CutPrefix(src, blobScheme); ok {
		store, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			return nil, err
		}
		return anndata.ReadZarr(ctx, store, prefix, options()...)
	}
	return anndata.Read(ctx, src, options()...)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	a, err := load(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.String())
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	src, dst := args[0], args[1]

	a, err := load(ctx, src)
	if err != nil {
		return err
	}
	if prefix, ok := strings.CutPrefix(dst, blobScheme); ok {
		store, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			return err
		}
		return a.WriteZarr(ctx, store, prefix, options()...)
	}

	var f anndata.Format
	if convertFormat != "" {
		f, err = anndata.ParseFormat(convertFormat)
	} else {
		f, err = anndata.FormatFromPath(dst)
	}
	if err != nil {
		return err
	}
	logger.Debug("converting", zap.String("src", src), zap.String("dst", dst), zap.String("format", string(f)))
	return a.WriteAs(ctx, dst, f, options()...)
}

func runExportCSV(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	a, err := load(ctx, args[0])
	if err != nil {
		return err
	}
	opts := options()
	if withMatrix {
		opts = append(opts, anndata.WithCSVMatrix())
	}
	return a.WriteCSVs(ctx, args[1], opts...)
}
