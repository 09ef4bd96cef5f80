// Package cmd - workspace commands
package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bomcost/adapters/storage"
	"bomcost/core/bom"
	"bomcost/core/diff"
	"bomcost/core/output"
	"bomcost/internal/config"
	"bomcost/internal/errors"
	"bomcost/internal/logging"
)

var workspaceName string

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage persisted product sets",
	Long: `A workspace is one persisted product set. Identifiers issued in a
workspace stay unique across every import, duplication and reload.`,
}

var workspaceImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Add products from definitions to the workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd.Context(), true, func(set *bom.ProductSet) (bool, error) {
			products, err := loadDefinitions(args[0], set)
			if err != nil {
				return false, err
			}
			for _, p := range products {
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s (uid %d)\n", p.Name(), p.UID())
			}
			return true, nil
		})
	},
}

var workspaceShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cost of every product in the workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd.Context(), false, func(set *bom.ProductSet) (bool, error) {
			return false, render(cmd.OutOrStdout(), output.NewReport(set.Name(), set.Products(), reportOptions()))
		})
	},
}

var workspaceDuplicateCmd = &cobra.Command{
	Use:   "duplicate <product-uid>",
	Short: "Copy a product under a fresh uid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := parseUID(args[0])
		if err != nil {
			return err
		}
		return withWorkspace(cmd.Context(), false, func(set *bom.ProductSet) (bool, error) {
			src, err := set.Product(uid)
			if err != nil {
				return false, err
			}
			dup := set.DuplicateProduct(src)
			fmt.Fprintf(cmd.OutOrStdout(), "duplicated %s: uid %d -> %d\n", src.Name(), src.UID(), dup.UID())
			return true, nil
		})
	},
}

var workspaceSelectCmd = &cobra.Command{
	Use:   "select <product-uid> <material-uid>",
	Short: "Make a material the active alternative of its XOR groups",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		puid, err := parseUID(args[0])
		if err != nil {
			return err
		}
		muid, err := parseUID(args[1])
		if err != nil {
			return err
		}
		return withWorkspace(cmd.Context(), false, func(set *bom.ProductSet) (bool, error) {
			p, err := set.Product(puid)
			if err != nil {
				return false, err
			}
			m, ok := p.Material(muid)
			if !ok {
				return false, errors.NotFound("material", muid.String()).WithContext("product", p.Name())
			}
			if err := p.SetXORActive(m); err != nil {
				return false, err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now uses %s; total %.2f\n", p.Name(), m.Name(), p.TotalCost())
			return true, nil
		})
	},
}

var workspaceDiffCmd = &cobra.Command{
	Use:   "diff <before-uid> <after-uid>",
	Short: "Compare the cost breakdowns of two products",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		before, err := parseUID(args[0])
		if err != nil {
			return err
		}
		after, err := parseUID(args[1])
		if err != nil {
			return err
		}
		return withWorkspace(cmd.Context(), false, func(set *bom.ProductSet) (bool, error) {
			a, err := set.Product(before)
			if err != nil {
				return false, err
			}
			b, err := set.Product(after)
			if err != nil {
				return false, err
			}
			printDiff(cmd.OutOrStdout(), diff.Compare(a.Breakdown(), b.Breakdown()))
			return false, nil
		})
	},
}

func printDiff(w io.Writer, r *diff.Result) {
	precision := config.Get().Output.Precision
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MATERIAL\tCHANGE\tBEFORE\tAFTER\tDELTA")
	if !r.BaseDelta.IsZero() {
		fmt.Fprintf(tw, "(offset)\t%s\t%s\t%s\t%s\n", diff.ChangeModified, r.BaseBefore.StringFixed(precision), r.BaseAfter.StringFixed(precision), r.BaseDelta.StringFixed(precision))
	}
	for _, m := range r.Materials {
		if m.ChangeType == diff.ChangeUnchanged {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.Material, m.ChangeType, lineStatus(m.Before), lineStatus(m.After), m.Delta.StringFixed(precision))
	}
	fmt.Fprintf(tw, "TOTAL\t\t%s\t%s\t%s\n", r.TotalBefore.StringFixed(precision), r.TotalAfter.StringFixed(precision), r.TotalDelta.StringFixed(precision))
	_ = tw.Flush()
}

func lineStatus(l *bom.CostLine) string {
	if l == nil {
		return "-"
	}
	return string(l.Status)
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored workspaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		infos, err := store.List(contextOrBackground(cmd.Context()))
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tID\tPRODUCTS\tNEXT UID\tUPDATED")
		for _, info := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", info.Name, info.ID, info.Products, info.UIDIndex, info.UpdatedAt.Format(time.RFC3339))
		}
		return tw.Flush()
	},
}

var workspaceDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		name := currentWorkspace()
		if err := store.Delete(contextOrBackground(cmd.Context()), name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted workspace %s\n", name)
		return nil
	},
}

func init() {
	workspaceCmd.PersistentFlags().StringVarP(&workspaceName, "workspace", "w", "", "workspace name (default from config)")

	workspaceCmd.AddCommand(workspaceImportCmd)
	workspaceCmd.AddCommand(workspaceShowCmd)
	workspaceCmd.AddCommand(workspaceDuplicateCmd)
	workspaceCmd.AddCommand(workspaceSelectCmd)
	workspaceCmd.AddCommand(workspaceDiffCmd)
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceDeleteCmd)
}

func currentWorkspace() string {
	if workspaceName != "" {
		return workspaceName
	}
	return config.Get().Workspace.Name
}

func openStore() (storage.Store, error) {
	cfg := config.Get().Workspace
	return storage.Open(storage.Backend(cfg.Backend), cfg.Path)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// withWorkspace restores the current workspace, runs fn and saves the set
// again when fn reports a change. With create set, a missing workspace
// starts out empty.
func withWorkspace(ctx context.Context, create bool, fn func(set *bom.ProductSet) (bool, error)) error {
	ctx = contextOrBackground(ctx)
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	name := currentWorkspace()
	var set *bom.ProductSet
	snap, err := store.Load(ctx, name)
	switch {
	case err == nil:
		if set, err = bom.Restore(snap); err != nil {
			return err
		}
	case create && errors.IsType(err, errors.TypeNotFound):
		set = bom.NewProductSet(name)
	default:
		return err
	}

	changed, err := fn(set)
	if err != nil || !changed {
		return err
	}
	info, err := store.Save(ctx, name, set.Snapshot())
	if err != nil {
		return err
	}
	logging.Debug("saved workspace",
		zap.String("workspace", info.Name),
		zap.String("id", info.ID),
		zap.Int("products", info.Products),
	)
	return nil
}

func parseUID(s string) (bom.UID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.TypeInput, err, "invalid uid %q", s)
	}
	return bom.UID(n), nil
}
