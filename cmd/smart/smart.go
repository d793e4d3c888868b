package smart

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tides/cmd/common"
	"github.com/llehouerou/tides/internal/errmsg"
)

func Cmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:   "smart",
		Short: "Manage smart playlists",
		SubCmds: []*cobra.Command{
			createCmd(),
			listCmd(),
			showCmd(),
			renameCmd(),
			rulesCmd(),
			deleteCmd(),
			tracksCmd(),
		},
	}.ToCobra()
}

// withEnv opens the application, runs fn and exits non-zero on failure.
func withEnv(name, configFile string, op errmsg.Op, context string, fn func(env *common.Env) error) {
	env, err := common.Open(configFile, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "smart %s: %v\n", name, err)
		os.Exit(1)
	}
	err = fn(env)
	_ = env.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "smart %s: %v\n", name, errmsg.FormatWith(op, context, err))
		os.Exit(1)
	}
}

type CreateParams struct {
	Name       string   `pos:"true" help:"Playlist name."`
	Rule       []string `short:"r" optional:"true" help:"Rule as \"field operator value\", e.g. \"genre is Rock\". Repeatable."`
	Any        bool     `optional:"true" help:"Match any rule instead of all of them."`
	Rules      string   `optional:"true" help:"Rule tree as JSON, or @file to read it from a file."`
	ConfigFile string   `optional:"true" help:"Extra config file loaded last."`
}

func createCmd() *cobra.Command {
	return boa.CmdT[CreateParams]{
		Use:         "create",
		Short:       "Create a smart playlist",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *CreateParams, cmd *cobra.Command, args []string) {
			withEnv("create", params.ConfigFile, errmsg.OpSmartCreate, params.Name, func(env *common.Env) error {
				return RunCreate(env, params, os.Stdout)
			})
		},
	}.ToCobra()
}

func RunCreate(env *common.Env, params *CreateParams, w io.Writer) error {
	tree, err := buildTree(params.Rules, params.Rule, params.Any)
	if err != nil {
		return err
	}
	pl, err := env.Playlists.Create(params.Name, tree)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Created %q (%s)\n", pl.Name, pl.ID)
	return nil
}

type ListParams struct {
	ConfigFile string `optional:"true" help:"Extra config file loaded last."`
}

func listCmd() *cobra.Command {
	return boa.CmdT[ListParams]{
		Use:         "list",
		Short:       "List smart playlists",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *ListParams, cmd *cobra.Command, args []string) {
			withEnv("list", params.ConfigFile, errmsg.OpSmartLoad, "", func(env *common.Env) error {
				return RunList(env, os.Stdout)
			})
		},
	}.ToCobra()
}

func RunList(env *common.Env, w io.Writer) error {
	all, err := env.Playlists.List()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(w, "No smart playlists.")
		return nil
	}
	entries, err := env.Library.All()
	if err != nil {
		return err
	}
	now := time.Now()
	for _, pl := range all {
		n, err := env.Playlists.Tracks(pl.ID, entries)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  %-24s %s, updated %s\n", pl.ID, pl.Name,
			common.Count(len(n), "track"), humanize.RelTime(pl.UpdatedAt, now, "ago", "from now"))
	}
	return nil
}

type RefParams struct {
	Playlist   string `pos:"true" help:"Playlist id or name."`
	ConfigFile string `optional:"true" help:"Extra config file loaded last."`
}

func showCmd() *cobra.Command {
	return boa.CmdT[RefParams]{
		Use:         "show",
		Short:       "Show the rules of a smart playlist",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *RefParams, cmd *cobra.Command, args []string) {
			withEnv("show", params.ConfigFile, errmsg.OpSmartLoad, params.Playlist, func(env *common.Env) error {
				return RunShow(env, params, os.Stdout)
			})
		},
	}.ToCobra()
}

func RunShow(env *common.Env, params *RefParams, w io.Writer) error {
	pl, err := env.Playlists.Find(params.Playlist)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (%s)\n", pl.Name, pl.ID)
	fmt.Fprint(w, describe(pl.Rules))
	return nil
}

type RenameParams struct {
	Playlist   string `pos:"true" help:"Playlist id or name."`
	Name       string `pos:"true" help:"New name."`
	ConfigFile string `optional:"true" help:"Extra config file loaded last."`
}

func renameCmd() *cobra.Command {
	return boa.CmdT[RenameParams]{
		Use:         "rename",
		Short:       "Rename a smart playlist",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *RenameParams, cmd *cobra.Command, args []string) {
			withEnv("rename", params.ConfigFile, errmsg.OpSmartRename, params.Playlist, func(env *common.Env) error {
				return RunRename(env, params, os.Stdout)
			})
		},
	}.ToCobra()
}

func RunRename(env *common.Env, params *RenameParams, w io.Writer) error {
	pl, err := env.Playlists.Find(params.Playlist)
	if err != nil {
		return err
	}
	if err := env.Playlists.Rename(pl.ID, params.Name); err != nil {
		return err
	}
	fmt.Fprintf(w, "Renamed %q to %q\n", pl.Name, params.Name)
	return nil
}

type RulesParams struct {
	Playlist   string   `pos:"true" help:"Playlist id or name."`
	Rule       []string `short:"r" optional:"true" help:"Rule as \"field operator value\". Repeatable."`
	Any        bool     `optional:"true" help:"Match any rule instead of all of them."`
	Rules      string   `optional:"true" help:"Rule tree as JSON, or @file to read it from a file."`
	ConfigFile string   `optional:"true" help:"Extra config file loaded last."`
}

func rulesCmd() *cobra.Command {
	return boa.CmdT[RulesParams]{
		Use:         "set-rules",
		Short:       "Replace the rules of a smart playlist",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *RulesParams, cmd *cobra.Command, args []string) {
			withEnv("set-rules", params.ConfigFile, errmsg.OpSmartUpdate, params.Playlist, func(env *common.Env) error {
				return RunSetRules(env, params, os.Stdout)
			})
		},
	}.ToCobra()
}

func RunSetRules(env *common.Env, params *RulesParams, w io.Writer) error {
	pl, err := env.Playlists.Find(params.Playlist)
	if err != nil {
		return err
	}
	tree, err := buildTree(params.Rules, params.Rule, params.Any)
	if err != nil {
		return err
	}
	if err := env.Playlists.UpdateRules(pl.ID, tree); err != nil {
		return err
	}
	fmt.Fprintf(w, "Updated rules of %q\n", pl.Name)
	return nil
}

func deleteCmd() *cobra.Command {
	return boa.CmdT[RefParams]{
		Use:         "delete",
		Short:       "Delete a smart playlist",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *RefParams, cmd *cobra.Command, args []string) {
			withEnv("delete", params.ConfigFile, errmsg.OpSmartDelete, params.Playlist, func(env *common.Env) error {
				return RunDelete(env, params, os.Stdout)
			})
		},
	}.ToCobra()
}

func RunDelete(env *common.Env, params *RefParams, w io.Writer) error {
	pl, err := env.Playlists.Find(params.Playlist)
	if err != nil {
		return err
	}
	if err := env.Playlists.Delete(pl.ID); err != nil {
		return err
	}
	fmt.Fprintf(w, "Deleted %q\n", pl.Name)
	return nil
}

type TracksParams struct {
	Playlist   string `pos:"true" help:"Playlist id or name."`
	Queue      bool   `short:"q" optional:"true" help:"Replace the play queue with the matching tracks."`
	ConfigFile string `optional:"true" help:"Extra config file loaded last."`
}

func tracksCmd() *cobra.Command {
	return boa.CmdT[TracksParams]{
		Use:         "tracks",
		Short:       "List the tracks matching a smart playlist",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *TracksParams, cmd *cobra.Command, args []string) {
			withEnv("tracks", params.ConfigFile, errmsg.OpSmartLoad, params.Playlist, func(env *common.Env) error {
				return RunTracks(env, params, os.Stdout)
			})
		},
	}.ToCobra()
}

func RunTracks(env *common.Env, params *TracksParams, w io.Writer) error {
	pl, err := env.Playlists.Find(params.Playlist)
	if err != nil {
		return err
	}
	entries, err := env.Library.All()
	if err != nil {
		return err
	}
	tracks, err := env.Playlists.Tracks(pl.ID, entries)
	if err != nil {
		return err
	}

	for _, e := range tracks {
		fmt.Fprintln(w, common.EntryLine(e))
	}
	fmt.Fprintf(w, "%s\n", common.Count(len(tracks), "track"))

	if params.Queue && len(tracks) > 0 {
		if err := env.Queue.SetQueue(tracks, 0); err != nil {
			return errmsg.Wrap(errmsg.OpQueueSave, err)
		}
		fmt.Fprintln(w, "Queue replaced.")
	}
	return nil
}
