package play

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tides/cmd/common"
	"github.com/llehouerou/tides/internal/catalog"
	"github.com/llehouerou/tides/internal/engine"
	"github.com/llehouerou/tides/internal/errmsg"
	"github.com/llehouerou/tides/internal/playlist"
	"github.com/llehouerou/tides/internal/search"
)

type Params struct {
	Entries    []string `pos:"true" optional:"true" help:"Entry ids or file paths. Without any, the saved queue resumes."`
	Search     string   `short:"s" optional:"true" help:"Queue the results of a catalog search."`
	Smart      string   `short:"p" optional:"true" help:"Queue the tracks of a smart playlist (id or name)."`
	Shuffle    bool     `optional:"true" help:"Shuffle playback."`
	Repeat     string   `short:"r" optional:"true" help:"Repeat mode: off, all or one."`
	ConfigFile string   `optional:"true" help:"Extra config file loaded last."`
}

// ErrNothingToPlay is returned when no source yields any entry.
var ErrNothingToPlay = errors.New("nothing to play")

const pollInterval = 250 * time.Millisecond

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "play",
		Short:       "Play entries through the audio engine",
		Long:        "Play entries, search results or a smart playlist with crossfaded transitions. Ctrl-C stops playback; the queue and mixer settings are saved.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			env, err := common.Open(params.ConfigFile, true)
			if err != nil {
				fmt.Fprintf(os.Stderr, "play: %v\n", err)
				os.Exit(1)
			}
			err = Run(ctx, env, params, os.Stdout)
			if cerr := env.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "play: %v\n", errmsg.Format(errmsg.OpPlaybackStart, err))
				os.Exit(1)
			}
		},
	}.ToCobra()
}

// Run fills the queue from params, starts playback and reports track
// changes until the queue ends or ctx is done.
func Run(ctx context.Context, env *common.Env, params *Params, w io.Writer) error {
	entries, err := selection(env, params)
	if err != nil {
		return err
	}
	if selected(params) {
		if len(entries) == 0 {
			return ErrNothingToPlay
		}
		if err := env.Queue.SetQueue(entries, 0); err != nil {
			return err
		}
	}
	if env.Queue.Len() == 0 {
		return ErrNothingToPlay
	}

	if params.Repeat != "" {
		mode, err := playlist.ParseRepeatMode(params.Repeat)
		if err != nil {
			return err
		}
		if err := env.Playback.SetRepeat(mode); err != nil {
			return err
		}
	}
	if params.Shuffle {
		if err := env.Playback.SetShuffle(true); err != nil {
			return err
		}
	}

	sub := env.Playback.Subscribe()

	start := max(env.Queue.Snapshot().Cursor, 0)
	if err := env.Playback.PlayIndex(ctx, start); err != nil {
		return err
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			env.Playback.Stop()
			return nil
		case <-sub.Done:
			return nil
		case tc := <-sub.TrackChanged:
			fmt.Fprintf(w, "%s %s\n", lo.Ternary(tc.Auto, "→", "▶"), common.EntryLine(tc.Current))
		case ev := <-sub.Error:
			fmt.Fprintf(w, "! %s %s: %v\n", ev.Operation, ev.Path, ev.Err)
		case <-ticker.C:
			if env.Engine.State() == engine.Stopped {
				fmt.Fprintln(w, "End of queue.")
				return nil
			}
		}
	}
}

func selected(params *Params) bool {
	return len(params.Entries) > 0 || params.Search != "" || params.Smart != ""
}

func selection(env *common.Env, params *Params) ([]catalog.Entry, error) {
	switch {
	case len(params.Entries) > 0:
		return common.ResolveEntries(env.Library, params.Entries)
	case params.Search != "":
		all, err := env.Library.All()
		if err != nil {
			return nil, err
		}
		res := search.Search(all, params.Search)
		return lo.Map(res.Scored, func(s search.Scored, _ int) catalog.Entry { return s.Entry }), nil
	case params.Smart != "":
		pl, err := env.Playlists.Find(params.Smart)
		if err != nil {
			return nil, err
		}
		all, err := env.Library.All()
		if err != nil {
			return nil, err
		}
		return env.Playlists.Tracks(pl.ID, all)
	}
	return nil, nil
}
