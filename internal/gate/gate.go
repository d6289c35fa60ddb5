// Package gate decides when and how a wall hit is played.
package gate

import (
	"context"
	"io"
	"log"

	"github.com/Danondso/wallhit/internal/clip"
	"github.com/Danondso/wallhit/internal/resolver"
	"github.com/Danondso/wallhit/internal/settings"
	"github.com/Danondso/wallhit/internal/sink"
)

// Gate plays the selected clip when a contact event fires. Trigger never
// blocks on disk or decode work: a cache miss plays the fallback tone and
// loads the real clip in the background.
type Gate struct {
	settings *settings.Store
	resolver *resolver.Resolver
	sink     sink.Sink
	logger   *log.Logger
}

// New creates a Gate.
func New(st *settings.Store, r *resolver.Resolver, out sink.Sink, logger *log.Logger) *Gate {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Gate{settings: st, resolver: r, sink: out, logger: logger}
}

// Trigger plays the current selection if playback is enabled and reports
// whether anything was played.
func (g *Gate) Trigger() bool {
	if !g.settings.Enabled() {
		return false
	}
	g.play()
	return true
}

// Preview plays the current selection even when playback is disabled.
func (g *Gate) Preview() {
	g.play()
}

func (g *Gate) play() {
	sel := g.settings.Selection()
	buf := g.current(sel)
	volume := settings.ClampVolume(g.settings.Volume())
	pitch := settings.ClampPitch(g.settings.Pitch())
	g.sink.Play(buf, volume, pitch)
}

// current returns the cached clip for sel, or the fallback tone while the
// clip loads.
func (g *Gate) current(sel string) *clip.Buffer {
	if buf, ok := g.resolver.Cached(sel); ok {
		return buf
	}
	g.logger.Printf("gate: %q not loaded yet, playing fallback", sel)
	g.resolver.Prefetch(context.Background(), sel)
	return g.resolver.Fallback()
}

// Run applies settings events until ctx is done or events is closed.
// Selection, frequency, reload and reset events drop the cached clip and
// start loading the new one. Volume and pitch are read at play time.
func (g *Gate) Run(ctx context.Context, events <-chan settings.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !ev.Kind.Invalidates() {
				continue
			}
			g.logger.Printf("gate: %s changed, reloading %q", ev.Kind, ev.Snapshot.Selection)
			g.resolver.Invalidate()
			g.resolver.Prefetch(ctx, ev.Snapshot.Selection)
		}
	}
}
