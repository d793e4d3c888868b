package queue

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tides/cmd/common"
	"github.com/llehouerou/tides/internal/catalog"
	"github.com/llehouerou/tides/internal/errmsg"
	"github.com/llehouerou/tides/internal/playlist"
)

func Cmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:   "queue",
		Short: "Inspect and edit the play queue",
		SubCmds: []*cobra.Command{
			showCmd(),
			setCmd(),
			addCmd(),
			removeCmd(),
			moveCmd(),
			jumpCmd(),
			clearCmd(),
			modeCmd(),
		},
	}.ToCobra()
}

func withEnv(name, configFile string, op errmsg.Op, fn func(env *common.Env) error) {
	env, err := common.Open(configFile, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "queue %s: %v\n", name, err)
		os.Exit(1)
	}
	err = fn(env)
	_ = env.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "queue %s: %v\n", name, errmsg.Format(op, err))
		os.Exit(1)
	}
}

type ShowParams struct {
	ConfigFile string `optional:"true" help:"Extra config file loaded last."`
}

func showCmd() *cobra.Command {
	return boa.CmdT[ShowParams]{
		Use:         "show",
		Short:       "Show the queue",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *ShowParams, cmd *cobra.Command, args []string) {
			withEnv("show", params.ConfigFile, errmsg.OpQueueLoad, func(env *common.Env) error {
				return RunShow(env, os.Stdout)
			})
		},
	}.ToCobra()
}

func RunShow(env *common.Env, w io.Writer) error {
	snap := env.Queue.Snapshot()
	fmt.Fprintf(w, "%s, repeat %s, shuffle %s\n",
		common.Count(len(snap.Entries), "track"), snap.Repeat, onOff(snap.Shuffle))
	for i, e := range snap.Entries {
		marker := "  "
		if i == snap.Cursor {
			marker = "> "
		}
		fmt.Fprintf(w, "%s%3d. %s\n", marker, i+1, common.EntryLine(e))
	}
	return nil
}

func onOff(b bool) string {
	return lo.Ternary(b, "on", "off")
}

type SetParams struct {
	Entries    []string `pos:"true" help:"Entry ids or file paths, in play order."`
	Start      int      `short:"s" optional:"true" help:"Position (1-based) of the current entry." default:"1"`
	ConfigFile string   `optional:"true" help:"Extra config file loaded last."`
}

func setCmd() *cobra.Command {
	return boa.CmdT[SetParams]{
		Use:         "set",
		Short:       "Replace the queue",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *SetParams, cmd *cobra.Command, args []string) {
			withEnv("set", params.ConfigFile, errmsg.OpQueueSave, func(env *common.Env) error {
				return RunSet(env, params, os.Stdout)
			})
		},
	}.ToCobra()
}

func RunSet(env *common.Env, params *SetParams, w io.Writer) error {
	entries, err := common.ResolveEntries(env.Library, params.Entries)
	if err != nil {
		return err
	}
	if err := env.Queue.SetQueue(entries, params.Start-1); err != nil {
		return err
	}
	fmt.Fprintf(w, "Queue holds %s\n", common.Count(len(entries), "track"))
	return nil
}

type AddParams struct {
	Entries    []string `pos:"true" help:"Entry ids or file paths."`
	Next       bool     `short:"n" optional:"true" help:"Insert right after the current entry instead of appending."`
	ConfigFile string   `optional:"true" help:"Extra config file loaded last."`
}

func addCmd() *cobra.Command {
	return boa.CmdT[AddParams]{
		Use:         "add",
		Short:       "Add entries to the queue",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *AddParams, cmd *cobra.Command, args []string) {
			withEnv("add", params.ConfigFile, errmsg.OpQueueAdd, func(env *common.Env) error {
				return RunAdd(env, params, os.Stdout)
			})
		},
	}.ToCobra()
}

func RunAdd(env *common.Env, params *AddParams, w io.Writer) error {
	entries, err := common.ResolveEntries(env.Library, params.Entries)
	if err != nil {
		return err
	}
	if params.Next {
		// insert in reverse so the first argument plays first
		for _, e := range slices.Backward(entries) {
			if err := env.Queue.AddNext(e); err != nil {
				return err
			}
		}
	} else {
		for _, e := range entries {
			if err := env.Queue.AddToEnd(e); err != nil {
				return err
			}
		}
	}
	fmt.Fprintf(w, "Added %s\n", common.Count(len(entries), "track"))
	return nil
}

type PositionParams struct {
	Position   int    `pos:"true" help:"Queue position (1-based)."`
	ConfigFile string `optional:"true" help:"Extra config file loaded last."`
}

func removeCmd() *cobra.Command {
	return boa.CmdT[PositionParams]{
		Use:         "remove",
		Short:       "Remove the entry at a position",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *PositionParams, cmd *cobra.Command, args []string) {
			withEnv("remove", params.ConfigFile, errmsg.OpQueueSave, func(env *common.Env) error {
				return RunRemove(env, params, os.Stdout)
			})
		},
	}.ToCobra()
}

func RunRemove(env *common.Env, params *PositionParams, w io.Writer) error {
	if err := checkPosition(env, params.Position); err != nil {
		return err
	}
	if err := env.Queue.RemoveFromQueue(params.Position - 1); err != nil {
		return err
	}
	fmt.Fprintf(w, "Removed position %d\n", params.Position)
	return nil
}

func jumpCmd() *cobra.Command {
	return boa.CmdT[PositionParams]{
		Use:         "jump",
		Short:       "Make the entry at a position current",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *PositionParams, cmd *cobra.Command, args []string) {
			withEnv("jump", params.ConfigFile, errmsg.OpQueueSave, func(env *common.Env) error {
				return RunJump(env, params, os.Stdout)
			})
		},
	}.ToCobra()
}

func RunJump(env *common.Env, params *PositionParams, w io.Writer) error {
	if err := checkPosition(env, params.Position); err != nil {
		return err
	}
	if err := env.Queue.JumpTo(params.Position - 1); err != nil {
		return err
	}
	fmt.Fprintf(w, "Now at %s\n", common.EntryLine(*env.Queue.Current()))
	return nil
}

func checkPosition(env *common.Env, pos int) error {
	if n := env.Queue.Len(); pos < 1 || pos > n {
		return fmt.Errorf("position %d out of range 1-%d", pos, n)
	}
	return nil
}

type MoveParams struct {
	From       int    `pos:"true" help:"Current position (1-based)."`
	To         int    `pos:"true" help:"New position (1-based)."`
	ConfigFile string `optional:"true" help:"Extra config file loaded last."`
}

func moveCmd() *cobra.Command {
	return boa.CmdT[MoveParams]{
		Use:         "move",
		Short:       "Move an entry to another position",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *MoveParams, cmd *cobra.Command, args []string) {
			withEnv("move", params.ConfigFile, errmsg.OpQueueReorder, func(env *common.Env) error {
				return RunMove(env, params, os.Stdout)
			})
		},
	}.ToCobra()
}

func RunMove(env *common.Env, params *MoveParams, w io.Writer) error {
	if err := checkPosition(env, params.From); err != nil {
		return err
	}
	if err := checkPosition(env, params.To); err != nil {
		return err
	}
	order := Moved(env.Queue.Snapshot().Entries, params.From-1, params.To-1)
	if err := env.Queue.Reorder(order); err != nil {
		return err
	}
	fmt.Fprintf(w, "Moved %d to %d\n", params.From, params.To)
	return nil
}

// Moved returns a copy of entries with the element at from moved to to.
func Moved(entries []catalog.Entry, from, to int) []catalog.Entry {
	out := slices.Clone(entries)
	e := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, e)
}

type ClearParams struct {
	ConfigFile string `optional:"true" help:"Extra config file loaded last."`
}

func clearCmd() *cobra.Command {
	return boa.CmdT[ClearParams]{
		Use:         "clear",
		Short:       "Empty the queue",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *ClearParams, cmd *cobra.Command, args []string) {
			withEnv("clear", params.ConfigFile, errmsg.OpQueueSave, func(env *common.Env) error {
				if err := env.Queue.Clear(); err != nil {
					return err
				}
				fmt.Println("Queue cleared")
				return nil
			})
		},
	}.ToCobra()
}

type ModeParams struct {
	Repeat     string `short:"r" optional:"true" help:"Repeat mode: off, all or one."`
	Shuffle    string `short:"s" optional:"true" help:"Shuffle: on or off."`
	ConfigFile string `optional:"true" help:"Extra config file loaded last."`
}

func modeCmd() *cobra.Command {
	return boa.CmdT[ModeParams]{
		Use:         "mode",
		Short:       "Set repeat and shuffle",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *ModeParams, cmd *cobra.Command, args []string) {
			withEnv("mode", params.ConfigFile, errmsg.OpQueueSave, func(env *common.Env) error {
				return RunMode(env, params, os.Stdout)
			})
		},
	}.ToCobra()
}

func RunMode(env *common.Env, params *ModeParams, w io.Writer) error {
	if params.Repeat != "" {
		mode, err := playlist.ParseRepeatMode(params.Repeat)
		if err != nil {
			return err
		}
		if err := env.Queue.SetRepeat(mode); err != nil {
			return err
		}
	}
	if params.Shuffle != "" {
		on, err := parseSwitch(params.Shuffle)
		if err != nil {
			return err
		}
		if err := env.Queue.SetShuffle(on); err != nil {
			return err
		}
	}
	snap := env.Queue.Snapshot()
	fmt.Fprintf(w, "repeat %s, shuffle %s\n", snap.Repeat, onOff(snap.Shuffle))
	return nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("want on or off, got %q", s)
	}
	return b, nil
}
