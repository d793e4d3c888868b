package main

import (
	"runtime/debug"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tides/cmd/enrich"
	"github.com/llehouerou/tides/cmd/lyrics"
	"github.com/llehouerou/tides/cmd/mixer"
	"github.com/llehouerou/tides/cmd/play"
	"github.com/llehouerou/tides/cmd/queue"
	"github.com/llehouerou/tides/cmd/recommend"
	"github.com/llehouerou/tides/cmd/scan"
	"github.com/llehouerou/tides/cmd/search"
	"github.com/llehouerou/tides/cmd/smart"
	"github.com/llehouerou/tides/cmd/waveform"
)

func main() {
	boa.CmdT[boa.NoParams]{
		Use:     "tides",
		Short:   "Headless music player and library tools",
		Version: appVersion(),
		SubCmds: []*cobra.Command{
			play.Cmd(),
			scan.Cmd(),
			search.Cmd(),
			recommend.Cmd(),
			smart.Cmd(),
			queue.Cmd(),
			lyrics.Cmd(),
			enrich.Cmd(),
			waveform.Cmd(),
			mixer.Cmd(),
		},
	}.Run()
}

func appVersion() string {
	bi, hasBuildInfo := debug.ReadBuildInfo()
	if !hasBuildInfo {
		return "unknown-(no build info)"
	}

	versionString := bi.Main.Version
	if versionString == "" {
		versionString = "unknown-(no version)"
	}

	return versionString
}
