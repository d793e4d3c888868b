package search

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tides/cmd/common"
	"github.com/llehouerou/tides/internal/errmsg"
	"github.com/llehouerou/tides/internal/search"
)

type Params struct {
	Query      []string `pos:"true" help:"Search terms."`
	Scores     bool     `short:"s" optional:"true" help:"Show relevance scores."`
	ConfigFile string   `optional:"true" help:"Extra config file loaded last."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "search",
		Short:       "Search the catalog",
		Long:        "Rank catalog entries against a query and group the results into top match, similar, same artist, same genre and recently added.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			env, err := common.Open(params.ConfigFile, false)
			if err != nil {
				fmt.Fprintf(os.Stderr, "search: %v\n", err)
				os.Exit(1)
			}
			err = Run(env, params, os.Stdout)
			_ = env.Close()
			if err != nil {
				fmt.Fprintf(os.Stderr, "search: %v\n", errmsg.Format(errmsg.OpLibraryLoad, err))
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(env *common.Env, params *Params, w io.Writer) error {
	entries, err := env.Library.All()
	if err != nil {
		return err
	}

	query := strings.Join(params.Query, " ")
	res := search.Search(entries, query)
	if res.Empty() && len(res.Recent) == 0 {
		fmt.Fprintln(w, "No results.")
		return nil
	}

	if res.Top != nil {
		section(w, "Top result", []search.Scored{*res.Top}, params.Scores)
	}
	section(w, "Similar", res.Similar, params.Scores)
	section(w, "Same artist", res.SameArtist, params.Scores)
	section(w, "Same genre", res.SameGenre, params.Scores)

	if len(res.Recent) > 0 {
		title := "Recently added"
		if len(res.Scored) == 0 {
			title = "No matches. Recently added"
		}
		fmt.Fprintf(w, "%s:\n", title)
		for _, e := range res.Recent {
			fmt.Fprintf(w, "  %s\n", common.EntryLine(e))
		}
	}
	return nil
}

func section(w io.Writer, title string, items []search.Scored, scores bool) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	lines := lo.Map(items, func(s search.Scored, _ int) string {
		line := common.EntryLine(s.Entry)
		if scores {
			line = fmt.Sprintf("%s  [%d]", line, s.Score)
		}
		return line
	})
	for _, line := range lines {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

