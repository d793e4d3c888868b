package recommend

import (
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tides/cmd/common"
	"github.com/llehouerou/tides/internal/errmsg"
	"github.com/llehouerou/tides/internal/search"
)

type Params struct {
	Entry      string `pos:"true" help:"Reference entry id or file path."`
	Limit      int    `short:"n" optional:"true" help:"Maximum number of recommendations (0 for all)." default:"10"`
	Queue      bool   `short:"q" optional:"true" help:"Append the recommendations to the play queue."`
	ConfigFile string `optional:"true" help:"Extra config file loaded last."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "recommend",
		Short:       "List entries similar to a reference entry",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			env, err := common.Open(params.ConfigFile, false)
			if err != nil {
				fmt.Fprintf(os.Stderr, "recommend: %v\n", err)
				os.Exit(1)
			}
			err = Run(env, params, os.Stdout)
			_ = env.Close()
			if err != nil {
				fmt.Fprintf(os.Stderr, "recommend: %v\n", errmsg.FormatWith(errmsg.OpLibraryLookup, params.Entry, err))
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(env *common.Env, params *Params, w io.Writer) error {
	ref, err := common.ResolveEntry(env.Library, params.Entry)
	if err != nil {
		return err
	}
	entries, err := env.Library.All()
	if err != nil {
		return err
	}

	recs := search.Recommend(entries, ref, params.Limit)
	if len(recs) == 0 {
		fmt.Fprintln(w, "No recommendations.")
		return nil
	}

	fmt.Fprintf(w, "Like %s:\n", common.EntryLine(ref))
	for _, r := range recs {
		fmt.Fprintf(w, "  %s  [%d]\n", common.EntryLine(r.Entry), r.Score)
	}

	if params.Queue {
		for _, r := range recs {
			if err := env.Queue.AddToEnd(r.Entry); err != nil {
				return errmsg.Wrap(errmsg.OpQueueAdd, err)
			}
		}
		fmt.Fprintf(w, "Queued %s.\n", common.Count(len(recs), "track"))
	}
	return nil
}
