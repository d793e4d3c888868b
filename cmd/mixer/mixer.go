package mixer

import (
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tides/cmd/common"
	"github.com/llehouerou/tides/internal/errmsg"
	"github.com/llehouerou/tides/internal/state"
)

type Params struct {
	Volume     float64 `short:"v" optional:"true" help:"Master volume (0-2, 1 is unity)."`
	Bass       float64 `optional:"true" help:"Bass gain in dB (-24 to 24)."`
	Mid        float64 `optional:"true" help:"Mid gain in dB (-24 to 24)."`
	Treble     float64 `optional:"true" help:"Treble gain in dB (-24 to 24)."`
	Reset      bool    `optional:"true" help:"Restore unity volume and a flat equalizer."`
	ConfigFile string  `optional:"true" help:"Extra config file loaded last."`
}

// Changes marks which settings were given on the command line.
type Changes struct {
	Volume, Bass, Mid, Treble bool
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "mixer",
		Short:       "Show or change the saved volume and equalizer",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			env, err := common.Open(params.ConfigFile, false)
			if err != nil {
				fmt.Fprintf(os.Stderr, "mixer: %v\n", err)
				os.Exit(1)
			}
			changes := Changes{
				Volume: cmd.Flags().Changed("volume"),
				Bass:   cmd.Flags().Changed("bass"),
				Mid:    cmd.Flags().Changed("mid"),
				Treble: cmd.Flags().Changed("treble"),
			}
			err = Run(env, params, changes, os.Stdout)
			_ = env.Close()
			if err != nil {
				fmt.Fprintf(os.Stderr, "mixer: %v\n", errmsg.Format(errmsg.OpMixerSave, err))
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(env *common.Env, params *Params, changes Changes, w io.Writer) error {
	current, err := env.State.GetMixer()
	if err != nil {
		return err
	}
	switch {
	case params.Reset:
		current = &state.MixerState{Volume: 1}
	case current == nil:
		// nothing saved yet: start from the configured values
		eq := env.Config.GetEqualizerConfig()
		current = &state.MixerState{
			Volume: env.Config.GetPlaybackConfig().Volume,
			Bass:   eq.Bass,
			Mid:    eq.Mid,
			Treble: eq.Treble,
		}
	}

	next := *current
	if changes.Volume {
		if params.Volume < 0 || params.Volume > 2 {
			return fmt.Errorf("volume %.2f out of range 0-2", params.Volume)
		}
		next.Volume = params.Volume
	}
	gains := []struct {
		set  bool
		v    float64
		dst  *float64
		name string
	}{
		{changes.Bass, params.Bass, &next.Bass, "bass"},
		{changes.Mid, params.Mid, &next.Mid, "mid"},
		{changes.Treble, params.Treble, &next.Treble, "treble"},
	}
	for _, g := range gains {
		if !g.set {
			continue
		}
		if g.v < -24 || g.v > 24 {
			return fmt.Errorf("%s %.1f dB out of range -24 to 24", g.name, g.v)
		}
		*g.dst = g.v
	}

	if next != *current || params.Reset {
		if err := env.State.SaveMixer(next); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "volume %.2f, bass %+.1f dB, mid %+.1f dB, treble %+.1f dB\n",
		next.Volume, next.Bass, next.Mid, next.Treble)
	return nil
}
