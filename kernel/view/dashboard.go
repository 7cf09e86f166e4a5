package view

import (
	"context"
	"time"

	"github.com/michaelquigley/pfxlog"
	"github.com/suntrap/buildboard/kernel/engine"
	"golang.org/x/sync/errgroup"
)

// Dashboard holds one instance of every screen over a shared engine context.
type Dashboard struct {
	ctx        *engine.Context
	Status     *BuildStatusScreen
	Assign     *AssignScreen
	Preconfigs *PreconfigScreen
	Details    *DetailScreen
	Hostnames  *HostnameIndex
}

func NewDashboard(c *engine.Context) *Dashboard {
	return &Dashboard{
		ctx:        c,
		Status:     NewBuildStatusScreen(c.Engine),
		Assign:     NewAssignScreen(c.Engine, c.Assignments, time.Now()),
		Preconfigs: NewPreconfigScreen(c.Engine, c.Pushes),
		Details:    NewDetailScreen(c.Engine),
		Hostnames:  NewHostnameIndex(c.Engine),
	}
}

// Refresh loads every list screen concurrently. Each screen keeps its own
// error; the first one is returned.
func (d *Dashboard) Refresh(ctx context.Context) error {
	start := time.Now()
	var g errgroup.Group
	g.Go(func() error { return d.Status.Load(ctx) })
	g.Go(func() error { return d.Assign.Load(ctx) })
	g.Go(func() error { return d.Preconfigs.Load(ctx) })
	g.Go(func() error { return d.Hostnames.Names.Load(ctx) })
	err := g.Wait()
	pfxlog.Logger().Debugf("dashboard refreshed in %v (mode %s)", time.Since(start), d.ctx.Config.Mode)
	return err
}

// Close drops in-flight loads and cancels pending tracker clears.
func (d *Dashboard) Close() {
	d.Status.Status.Close()
	d.Assign.History.Close()
	d.Preconfigs.Configs.Close()
	d.Preconfigs.Pushed.Close()
	d.Details.Details.Close()
	d.Hostnames.Names.Close()
	d.ctx.Close()
}
