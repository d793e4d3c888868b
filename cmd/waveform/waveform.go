package waveform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tides/cmd/common"
	"github.com/llehouerou/tides/internal/errmsg"
	"github.com/llehouerou/tides/internal/library"
)

type Params struct {
	Resource   string `pos:"true" help:"Entry id or audio file path."`
	Bars       int    `short:"b" optional:"true" help:"Number of bars (defaults to waveform.bars from the config)."`
	Raw        bool   `optional:"true" help:"Print peak values instead of a bar graph."`
	ConfigFile string `optional:"true" help:"Extra config file loaded last."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "waveform",
		Short:       "Print the waveform peaks of a track",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			env, err := common.Open(params.ConfigFile, false)
			if err != nil {
				fmt.Fprintf(os.Stderr, "waveform: %v\n", err)
				os.Exit(1)
			}
			err = Run(ctx, env, params, os.Stdout)
			_ = env.Close()
			if err != nil {
				fmt.Fprintf(os.Stderr, "waveform: %v\n", errmsg.FormatWith(errmsg.OpWaveformLoad, params.Resource, err))
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(ctx context.Context, env *common.Env, params *Params, w io.Writer) error {
	resource := params.Resource
	e, err := common.ResolveEntry(env.Library, params.Resource)
	switch {
	case err == nil:
		resource = e.Path
	case !errors.Is(err, library.ErrNotFound):
		return err
	}

	bars := params.Bars
	if bars <= 0 {
		bars = env.Config.GetWaveformConfig().Bars
	}

	peaks, err := env.Waveform.Peaks(ctx, resource, bars)
	if err != nil {
		return err
	}

	if params.Raw {
		for i, p := range peaks {
			fmt.Fprintf(w, "%4d %.4f\n", i, p)
		}
		return nil
	}
	fmt.Fprintln(w, Graph(peaks))
	return nil
}

var levels = []rune(" ▁▂▃▄▅▆▇█")

// Graph renders peaks in [0, 1] as one line of block characters.
func Graph(peaks []float64) string {
	var b strings.Builder
	top := len(levels) - 1
	for _, p := range peaks {
		p = max(0, min(1, p))
		b.WriteRune(levels[int(math.Round(p*float64(top)))])
	}
	return b.String()
}
