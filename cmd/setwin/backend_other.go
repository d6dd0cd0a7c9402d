//go:build !linux && !darwin

package main

import (
	"fmt"
	"runtime"

	"github.com/1broseidon/setwin/internal/config"
	"github.com/1broseidon/setwin/internal/platform"
)

func newHostBackend(*config.Config) (platform.Backend, func(), error) {
	return nil, nil, fmt.Errorf("host backend is not available on %s; set backend: %s", runtime.GOOS, config.BackendDryRun)
}
