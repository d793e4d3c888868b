package lyrics

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tides/cmd/common"
	"github.com/llehouerou/tides/internal/errmsg"
	"github.com/llehouerou/tides/internal/lyrics"
)

type Params struct {
	Entry      string `pos:"true" help:"Entry id or file path."`
	At         string `short:"a" optional:"true" help:"Playback position (e.g. 1:23 or 83s); marks the active line."`
	Timeout    int    `short:"t" optional:"true" help:"Lookup timeout in seconds." default:"10"`
	ConfigFile string `optional:"true" help:"Extra config file loaded last."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "lyrics",
		Short:       "Show the lyrics of an entry",
		Long:        "Resolve lyrics from the entry's tags, a sibling .lrc file, the cache or lrclib.net, in that order.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			env, err := common.Open(params.ConfigFile, false)
			if err != nil {
				fmt.Fprintf(os.Stderr, "lyrics: %v\n", err)
				os.Exit(1)
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(params.Timeout)*time.Second)
			err = Run(ctx, env, params, os.Stdout)
			cancel()
			_ = env.Close()
			if err != nil {
				fmt.Fprintf(os.Stderr, "lyrics: %v\n", errmsg.FormatWith(errmsg.OpLyricsFetch, params.Entry, err))
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(ctx context.Context, env *common.Env, params *Params, w io.Writer) error {
	e, err := common.ResolveEntry(env.Library, params.Entry)
	if err != nil {
		return err
	}

	active := -1
	res := env.Lyrics.Fetch(ctx, e)
	if params.At != "" {
		pos, err := ParsePosition(params.At)
		if err != nil {
			return err
		}
		active = res.Document.LineAt(pos)
	}

	if len(res.Document.Lines) == 0 {
		fmt.Fprintln(w, "No lyrics found.")
		return nil
	}

	fmt.Fprintf(w, "Lyrics for %s (%s)\n\n", common.EntryLine(e), res.Origin)
	Render(w, res.Document, active)
	return nil
}

// Render writes the document, timestamped when synced, with the active
// line marked.
func Render(w io.Writer, doc *lyrics.Document, active int) {
	synced := doc.IsSynced()
	for i, line := range doc.Lines {
		marker := "  "
		if i == active {
			marker = "> "
		}
		if synced {
			fmt.Fprintf(w, "%s[%s] %s\n", marker, stamp(line.Time), line.Text)
		} else {
			fmt.Fprintf(w, "%s%s\n", marker, line.Text)
		}
	}
}

func stamp(d time.Duration) string {
	cs := d.Milliseconds() / 10
	return fmt.Sprintf("%02d:%02d.%02d", cs/6000, (cs/100)%60, cs%100)
}

// ParsePosition accepts a Go duration ("83s", "1m23s") or m:ss[.frac].
func ParsePosition(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("negative position %q", s)
		}
		return d, nil
	}
	minutes, seconds, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	sec, err := strconv.ParseFloat(seconds, 64)
	if err != nil || sec < 0 || sec >= 60 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return time.Duration(m)*time.Minute + time.Duration(sec*float64(time.Second)), nil
}
