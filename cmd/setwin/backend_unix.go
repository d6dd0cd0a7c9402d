//go:build linux || darwin

package main

import (
	"github.com/1broseidon/setwin/internal/config"
	"github.com/1broseidon/setwin/internal/platform"
)

func newHostBackend(cfg *config.Config) (platform.Backend, func(), error) {
	host := platform.NewHostBackend(platform.HostConfig{
		CurrentPath:   platform.Path(cfg.Host.CurrentPath),
		ScreenType:    cfg.Host.ScreenType,
		Foreground:    cfg.Host.Foreground,
		Background:    cfg.Host.Background,
		Border:        cfg.Host.Border,
		TickRate:      cfg.TickRate,
		NewWindowCols: cfg.Host.NewWindowCols,
		NewWindowRows: cfg.Host.NewWindowRows,
	})
	return host, func() { host.Close() }, nil
}
