package main

import (
	"fmt"
	"strings"

	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
)

var (
	ProfileMode string
	ProfilePath = "."
)

type stopper interface {
	Stop()
}

// startProfiler starts the profiler selected by mode, or returns a no-op when
// mode is empty.
func startProfiler(mode string) (stopper, error) {
	var fn func(*profile.Profile)
	switch strings.ToLower(mode) {
	case "":
		return nopStopper{}, nil
	case "cpu":
		fn = profile.CPUProfile
	case "mem":
		fn = profile.MemProfile
	case "block":
		fn = profile.BlockProfile
	default:
		return nil, fmt.Errorf("unrecognized profile mode %q, must be one of cpu, mem or block", mode)
	}
	log.WithField("mode", mode).WithField("path", ProfilePath).Debug("Starting profiler")
	return profile.Start(fn, profile.ProfilePath(ProfilePath), profile.NoShutdownHook, profile.Quiet), nil
}

type nopStopper struct{}

func (nopStopper) Stop() {}
