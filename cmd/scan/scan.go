package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tides/cmd/common"
	"github.com/llehouerou/tides/internal/errmsg"
	"github.com/llehouerou/tides/internal/library"
)

type Params struct {
	Sources    []string `pos:"true" optional:"true" help:"Directories to scan. Defaults to library_sources from the config."`
	Full       bool     `short:"f" optional:"true" help:"Rescan every file, ignoring modification times."`
	Verbose    bool     `short:"v" optional:"true" help:"List added, updated and removed files."`
	ConfigFile string   `optional:"true" help:"Extra config file loaded last."`
}

// ErrNoSources is returned when neither arguments nor config name a directory.
var ErrNoSources = errors.New("no library sources: pass directories or set library_sources")

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "scan",
		Short:       "Scan music directories into the catalog",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			env, err := common.Open(params.ConfigFile, false)
			if err != nil {
				fmt.Fprintf(os.Stderr, "scan: %v\n", err)
				os.Exit(1)
			}
			err = Run(ctx, env, params, os.Stdout)
			_ = env.Close()
			if err != nil {
				fmt.Fprintf(os.Stderr, "scan: %v\n", errmsg.Format(errmsg.OpLibraryScan, err))
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(ctx context.Context, env *common.Env, params *Params, w io.Writer) error {
	sources := params.Sources
	if len(sources) == 0 {
		sources = env.Config.LibrarySources
	}
	if len(sources) == 0 {
		return ErrNoSources
	}

	progress := make(chan library.ScanProgress)
	done := make(chan struct{})
	go func() {
		defer close(done)
		last := ""
		for p := range progress {
			if p.Phase != last {
				env.Log.Debug().Str("phase", p.Phase).Int("total", p.Total).Msg("scan")
				last = p.Phase
			}
		}
	}()

	refresh := env.Library.Refresh
	if params.Full {
		refresh = env.Library.FullRefresh
	}
	stats, err := refresh(ctx, sources, progress)
	<-done
	if err != nil {
		return err
	}

	added, updated, removed := stats.Totals()
	total, err := env.Library.Count()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s added, %s updated, %s removed; catalog holds %s\n",
		common.Count(added, "file"), common.Count(updated, "file"), common.Count(removed, "file"),
		common.Count(total, "track"))

	if params.Verbose {
		printChanges(w, stats)
	}
	return nil
}

func printChanges(w io.Writer, stats *library.ScanStats) {
	sources := make([]string, 0, len(stats.BySource))
	for src := range stats.BySource {
		sources = append(sources, src)
	}
	slices.Sort(sources)

	for _, src := range sources {
		s := stats.BySource[src]
		for _, p := range s.Added {
			fmt.Fprintf(w, "+ %s\n", p)
		}
		for _, p := range s.Updated {
			fmt.Fprintf(w, "~ %s\n", p)
		}
		for _, p := range s.Removed {
			fmt.Fprintf(w, "- %s\n", p)
		}
	}
}
