// Package cmd - cost command
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bomcost/adapters/hcl"
	"bomcost/core/bom"
	"bomcost/core/output"
	"bomcost/internal/errors"
	"bomcost/internal/logging"
)

// costCmd evaluates definition files without touching any workspace
var costCmd = &cobra.Command{
	Use:   "cost [path]",
	Short: "Cost the products in a definition file or directory",
	Long: `Load products from HCL definitions and print their costs.

The path can be a single file or a directory; directories are searched
recursively for *.bom.hcl files.

Examples:
  bomcost cost chair.bom.hcl
  bomcost cost --format markdown ./catalog`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCost,
}

func runCost(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	set := bom.NewProductSet(filepath.Base(path))
	if _, err := loadDefinitions(path, set); err != nil {
		return err
	}

	logging.Info("costing definitions", zap.String("path", path), zap.Int("products", len(set.Products())))
	return render(cmd.OutOrStdout(), output.NewReport(set.Name(), set.Products(), reportOptions()))
}

func loadDefinitions(path string, set *bom.ProductSet) ([]*bom.Product, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "path does not exist: %s", path)
	}
	loader := hcl.NewLoader()
	if info.IsDir() {
		return loader.LoadDir(path, set)
	}
	return loader.LoadFile(path, set)
}
