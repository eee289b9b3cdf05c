// Command accelctl inspects accelerator module manifests and preloads
// modules through the docaccel cache cascade.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/docaccel"
	"github.com/gogpu/docaccel/loader"
	"github.com/gogpu/docaccel/loader/fsstore"
	"github.com/gogpu/docaccel/loader/httprt"
	"github.com/gogpu/docaccel/loader/wazerotc"
	"github.com/gogpu/docaccel/manifest"
)

var (
	verbose   bool
	cacheDir  string
	cacheName string
	timeout   time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "accelctl",
		Short: "Inspect and preload document-engine accelerator modules",
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				docaccel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	inspect := &cobra.Command{
		Use:   "inspect <manifest>",
		Short: "Print and validate a module manifest",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}

	preload := &cobra.Command{
		Use:   "preload <manifest> [module-id...]",
		Short: "Load modules through the full cache cascade, with progress",
		Long: "Preload fetches, persists, compiles and instantiates the named modules\n" +
			"(or every module in the manifest when none are named).",
		Args: cobra.MinimumNArgs(1),
		RunE: runPreload,
	}
	preload.Flags().StringVar(&cacheDir, "cache-dir", "", "persistent cache root (default: user cache dir)")
	preload.Flags().StringVar(&cacheName, "cache-name", loader.DefaultCacheName, "persistent cache namespace")
	preload.Flags().DurationVar(&timeout, "timeout", httprt.DefaultTimeout, "per-fetch timeout")

	root.AddCommand(inspect, preload)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	m, err := manifest.Load(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "base url:\t%s\n", m.BaseURL)
	fmt.Fprintln(w, "ID\tVERSION\tSIZE\tURL\tCAPABILITIES")
	for _, e := range m.Modules {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%v\n", e.ID, e.Version, e.Size, m.ResolveURL(e), e.Capabilities)
	}
	w.Flush()

	if err := m.Validate(); err != nil {
		return fmt.Errorf("manifest is invalid:\n%w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "manifest is valid")
	return nil
}

func runPreload(cmd *cobra.Command, args []string) error {
	m, err := manifest.Load(args[0])
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}

	ids := args[1:]
	if len(ids) == 0 {
		for _, e := range m.Modules {
			ids = append(ids, e.ID)
		}
	}

	ctx := context.Background()
	tc := wazerotc.New(ctx)
	defer tc.Close(ctx)

	l := loader.New(m,
		loader.WithStorage(fsstore.New(cacheDir)),
		loader.WithTransport(httprt.New(httprt.WithTimeout(timeout))),
		loader.WithToolchain(tc),
		loader.WithCacheName(cacheName),
	)

	out := cmd.OutOrStdout()
	failed := 0
	for _, id := range ids {
		_, err := l.Load(ctx, id, func(p loader.Progress) {
			fmt.Fprintf(out, "%s: %s %.1f%% (%d/%d bytes)\n",
				p.ModuleID, p.Phase, p.Percent, p.BytesLoaded, p.BytesTotal)
		})
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", id, err)
		}
	}

	st := l.Stats()
	fmt.Fprintf(out, "loaded %d module(s): %d storage hit(s), %d network load(s), %d failure(s)\n",
		st.Loaded, st.StorageHits, st.NetworkLoads, st.Failures)
	if failed > 0 {
		return fmt.Errorf("%d module(s) failed to preload", failed)
	}
	return nil
}
