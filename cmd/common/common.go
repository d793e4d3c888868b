// Package common holds what the tides commands share: parameter enrichment,
// application setup and output formatting.
package common

import (
	"github.com/GiGurra/boa/pkg/boa"

	"github.com/llehouerou/tides/internal/app"
	"github.com/llehouerou/tides/internal/config"
	"github.com/llehouerou/tides/internal/errmsg"
	"github.com/llehouerou/tides/internal/logging"
	"github.com/llehouerou/tides/internal/stderr"
)

func DefaultParamEnricher() boa.ParamEnricher {
	return boa.ParamEnricherCombine(
		boa.ParamEnricherBool,
		boa.ParamEnricherName,
		boa.ParamEnricherShort,
	)
}

// Env is an opened application together with its logger.
type Env struct {
	*app.App
	logger *logging.Logger
	audio  bool
}

// Open loads the configuration (plus configFile, when set) and builds the
// application. With audio set it also captures C-library stderr output and
// opens the sound device.
func Open(configFile string, audio bool) (*Env, error) {
	var extra []string
	if configFile != "" {
		extra = append(extra, configFile)
	}
	cfg, err := config.Load(extra...)
	if err != nil {
		return nil, errmsg.Wrap(errmsg.OpConfigLoad, err)
	}
	return OpenWith(cfg, app.Options{Audio: audio})
}

// OpenWith builds the application from an already loaded configuration.
func OpenWith(cfg *config.Config, opts app.Options) (*Env, error) {
	captured := false
	if opts.Audio && opts.Output == nil {
		// the sound device libraries write straight to fd 2
		captured = stderr.Start() == nil
	}

	logger, err := logging.New(config.LogConfig{Level: cfg.GetLogLevel(), File: cfg.Log.File}, stderr.Original())
	if err != nil {
		if captured {
			stderr.Stop()
		}
		return nil, errmsg.Wrap(errmsg.OpInitialize, err)
	}
	if captured {
		stderr.Forward(logger.Logger)
	}

	a, err := app.New(cfg, logger.Logger, opts)
	if err != nil {
		_ = logger.Close()
		if captured {
			stderr.Stop()
		}
		return nil, errmsg.Wrap(errmsg.OpInitialize, err)
	}

	return &Env{App: a, logger: logger, audio: captured}, nil
}

// Close tears the application down, then the logger.
func (e *Env) Close() error {
	err := e.App.Close()
	if e.audio {
		stderr.Stop()
	}
	if lerr := e.logger.Close(); err == nil {
		err = lerr
	}
	return err
}
