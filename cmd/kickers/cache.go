package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fridaykickers/kickers/internal/errors"
)

func cacheCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and purge offline cache generations",
	}
	cmd.AddCommand(cacheListCmd(e), cachePurgeCmd(e))
	return cmd
}

func cacheListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cache generations and their entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, closeFn, err := e.openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			names, err := st.Names(ctx)
			if err != nil {
				return errors.New("K300").Wrap(err)
			}
			if len(names) == 0 {
				info("No cache generations")
				return nil
			}

			current := e.cfg.Offline.CachePrefix + e.cfg.Offline.Version
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GENERATION\tENTRIES\t")
			for _, name := range names {
				b, err := st.Open(ctx, name)
				if err != nil {
					return errors.New("K300").WithDetail(name).Wrap(err)
				}
				keys, err := b.Keys(ctx)
				if err != nil {
					return errors.New("K300").WithDetail(name).Wrap(err)
				}
				mark := ""
				if name == current {
					mark = "current"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", name, len(keys), mark)
			}
			return tw.Flush()
		},
	}
}

func cachePurgeCmd(e *env) *cobra.Command {
	var stale bool

	cmd := &cobra.Command{
		Use:   "purge [generation...]",
		Short: "Drop cache generations",
		Long: `Drop cache generations owned by kickers.

With no arguments every generation carrying offline.cache_prefix is
dropped. --stale keeps the generation of offline.version.

Examples:
  kickers cache purge
  kickers cache purge --stale
  kickers cache purge friday-kickers-2025.05.01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, closeFn, err := e.openStorage(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			names, err := st.Names(ctx)
			if err != nil {
				return errors.New("K300").Wrap(err)
			}
			targets := purgeTargets(names, args, e.cfg.Offline.CachePrefix, e.cfg.Offline.CachePrefix+e.cfg.Offline.Version, stale)
			for _, name := range targets {
				if err := st.Drop(ctx, name); err != nil {
					return errors.New("K300").WithDetail("drop " + name).Wrap(err)
				}
				success("Dropped %s", name)
			}
			if len(targets) == 0 {
				info("Nothing to purge")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stale, "stale", false, "Keep the current version's generation")

	return cmd
}

// purgeTargets picks the generations to drop: the named ones that exist,
// or every one carrying prefix.
func purgeTargets(names, requested []string, prefix, current string, stale bool) []string {
	var out []string
	for _, name := range names {
		switch {
		case len(requested) > 0:
			if !slices.Contains(requested, name) {
				continue
			}
		case !strings.HasPrefix(name, prefix):
			continue
		}
		if stale && name == current {
			continue
		}
		out = append(out, name)
	}
	return out
}
