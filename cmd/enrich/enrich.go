package enrich

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tides/cmd/common"
	"github.com/llehouerou/tides/internal/enrich"
	"github.com/llehouerou/tides/internal/errmsg"
	"github.com/llehouerou/tides/internal/lrclib"
)

type Params struct {
	Entry      string `pos:"true" help:"Entry id or file path."`
	Write      bool   `short:"w" optional:"true" help:"Write corrected metadata and lyrics to the file tags."`
	Timeout    int    `short:"t" optional:"true" help:"Lookup timeout in seconds." default:"10"`
	ConfigFile string `optional:"true" help:"Extra config file loaded last."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "enrich",
		Short:       "Look up corrected metadata and lyrics for an entry",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			env, err := common.Open(params.ConfigFile, false)
			if err != nil {
				fmt.Fprintf(os.Stderr, "enrich: %v\n", err)
				os.Exit(1)
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(params.Timeout)*time.Second)
			err = Run(ctx, env, lrclib.New(), params, os.Stdout)
			cancel()
			_ = env.Close()
			if err != nil {
				fmt.Fprintf(os.Stderr, "enrich: %v\n", errmsg.FormatWith(errmsg.OpTagsWrite, params.Entry, err))
				os.Exit(1)
			}
		},
	}.ToCobra()
}

// Run looks the entry up on service and updates the catalog with whatever
// came back. Lookup failures are reported, never returned.
func Run(ctx context.Context, env *common.Env, service enrich.Service, params *Params, w io.Writer) error {
	e, err := common.ResolveEntry(env.Library, params.Entry)
	if err != nil {
		return err
	}

	q := enrich.QueryFor(e)
	if !q.Valid() {
		fmt.Fprintln(w, "Entry lacks a title or artist; nothing to look up.")
		return nil
	}

	res, err := service.Lookup(ctx, q)
	if err != nil {
		env.Log.Warn().Err(err).Int64("entry", e.ID).Msg("enrichment failed")
		fmt.Fprintf(w, "Lookup failed: %v\n", err)
		return nil
	}

	merged := enrich.Apply(e, res)
	u := enrich.Diff(e, merged)
	if u.IsEmpty() {
		fmt.Fprintln(w, "Nothing new.")
		return nil
	}

	if params.Write {
		if _, err := enrich.Persist(e, res); err != nil {
			return err
		}
	}
	if err := env.Library.UpdateMetadata(e.ID, u); err != nil {
		return err
	}

	fmt.Fprintln(w, common.EntryLine(merged))
	if u.Lyrics != nil {
		fmt.Fprintln(w, "Lyrics stored.")
	}
	if params.Write {
		fmt.Fprintln(w, "Tags written.")
	}
	return nil
}
