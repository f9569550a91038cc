package optid

import (
	"context"

	"github.com/goliatone/go-optid/pkg/activity"
)

// WithActivityHooks attaches activity hooks notified after every resolution.
// Hooks are cloned and nil entries dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.Clone(hooks)
	return func(cfg *config) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel overrides activity.DefaultChannel for emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *config) {
		cfg.activityChannel = channel
	}
}

// WithActivityActor stamps emitted events with the session actor and tenant.
func WithActivityActor(actorID, tenantID string) Option {
	return func(cfg *config) {
		cfg.activityActorID = actorID
		cfg.activityTenantID = tenantID
	}
}

// ActivityHooks returns a copy of the hooks configured on the generator.
func (g *Generator) ActivityHooks() activity.Hooks {
	if g == nil {
		return nil
	}
	return activity.Clone(g.hooks)
}

func (g *Generator) emit(trace *Trace, candidate, location string, examined int) {
	if !g.emitter.Enabled() {
		return
	}
	input := activity.OwnerEventInput{
		ActorID:   g.actorID,
		TenantID:  g.tenantID,
		Owner:     trace.Owner,
		Path:      trace.Path,
		Candidate: candidate,
		Location:  location,
		Examined:  examined,
	}
	event := activity.BuildOwnerUnresolvedEvent(input)
	if trace.Found {
		event = activity.BuildOwnerResolvedEvent(input)
	} else if trace.HostMatch {
		event.Metadata = setMetadata(event.Metadata, "host_match", true)
	}
	if err := g.emitter.Emit(context.Background(), event); err != nil {
		g.logger.LogResolution(ResolutionEvent{Op: OpActivity, Path: trace.Path, Owner: trace.Owner, Err: err})
	}
}

func setMetadata(metadata map[string]any, key string, value any) map[string]any {
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata[key] = value
	return metadata
}
