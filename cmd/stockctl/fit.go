package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"stock_predictor/internal/feature/regression/adapters/plot"
	"stock_predictor/internal/feature/regression/domain"
	regressionusecase "stock_predictor/internal/feature/regression/usecase"
	symbollistusecase "stock_predictor/internal/feature/symbollist/usecase"
)

type fitOptions struct {
	file    string
	symbols string
	plot    string
	predict string
}

func fitCmd() *cobra.Command {
	var opts fitOptions
	cmd := &cobra.Command{
		Use:     "fit",
		Short:   "Fit a price trend line from a CSV file without starting the server",
		Example: "  stockctl fit --file ABC.csv --symbols DaftarSaham.csv --plot out.png --predict 2025-01-01",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.file, "file", "", "price CSV with timestamp and close columns; the file name selects the stock code")
	cmd.Flags().StringVar(&opts.symbols, "symbols", "", "reference table CSV with Code and Name columns")
	cmd.Flags().StringVar(&opts.plot, "plot", "", "write the scatter plot and trend line to this PNG path")
	cmd.Flags().StringVar(&opts.predict, "predict", "", "predict the price on this date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("symbols")
	return cmd
}

func runFit(ctx context.Context, opts fitOptions, out io.Writer) error {
	table := newMemorySymbols()
	ref, err := os.Open(opts.symbols)
	if err != nil {
		return err
	}
	defer ref.Close()
	if _, err := symbollistusecase.NewImportUsecase(table).Import(ctx, ref); err != nil {
		return err
	}

	data, err := os.ReadFile(opts.file)
	if err != nil {
		return err
	}

	series, points, err := regressionusecase.LoadDataset(ctx, table, filepath.Base(opts.file), data)
	if err != nil {
		return fmt.Errorf("%s: %w", domain.KindName(err), err)
	}
	model, err := regressionusecase.Fit(series, points)
	if err != nil {
		return fmt.Errorf("%s: %w", domain.KindName(err), err)
	}

	fmt.Fprintf(out, "%s (%s)\n", series.Name, series.Code)
	fmt.Fprintf(out, "points:      %d (%s .. %s)\n", model.Points, model.MinDate.Format("2006-01-02"), model.MaxDate.Format("2006-01-02"))
	fmt.Fprintf(out, "equation:    %s\n", model.Equation())
	fmt.Fprintf(out, "correlation: %.4f\n", model.Correlation)

	if opts.plot != "" {
		staged, err := plot.NewRenderer(opts.plot).Stage(points, model)
		if err != nil {
			return err
		}
		if err := staged.Commit(); err != nil {
			return err
		}
		fmt.Fprintf(out, "plot:        %s\n", opts.plot)
	}

	if opts.predict != "" {
		res, err := regressionusecase.Predict(model, opts.predict)
		if err != nil {
			return fmt.Errorf("%s: %w", domain.KindName(err), err)
		}
		fmt.Fprintf(out, "prediction:  %s -> %s\n", res.Date.Format("2006-01-02"), res.DisplayPrice())
	}
	return nil
}
