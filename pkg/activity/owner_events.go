package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the owner resolver.
const (
	VerbOwnerResolved   = "optid.owner.resolved"
	VerbOwnerUnresolved = "optid.owner.unresolved"
	VerbIndexBuilt      = "optid.index.built"
)

// OwnerEventInput describes the outcome of one owner lookup.
type OwnerEventInput struct {
	ActorID    string
	TenantID   string
	Channel    string
	Owner      string
	Path       string
	Candidate  string
	Location   string
	Examined   int
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildOwnerResolvedEvent reports an option attributed to Owner. The object
// ID is the rendered option identifier.
func BuildOwnerResolvedEvent(input OwnerEventInput) Event {
	objectID := strings.TrimSpace(input.Path)
	if owner := strings.TrimSpace(input.Owner); owner != "" {
		objectID = owner + ":" + objectID
	}
	return buildOwnerEvent(VerbOwnerResolved, "option", objectID, input)
}

// BuildOwnerUnresolvedEvent reports an option no installed module could be
// attributed for.
func BuildOwnerUnresolvedEvent(input OwnerEventInput) Event {
	return buildOwnerEvent(VerbOwnerUnresolved, "option", strings.TrimSpace(input.Path), input)
}

// IndexEventInput describes a completed origin index build.
type IndexEventInput struct {
	Channel    string
	Source     string
	Roots      int
	Owners     int
	OccurredAt time.Time
}

// BuildIndexBuiltEvent reports how many roots and owners an index holds.
func BuildIndexBuiltEvent(input IndexEventInput) Event {
	objectID := strings.TrimSpace(input.Source)
	if objectID == "" {
		objectID = "origin_index"
	}
	return Event{
		Verb:       VerbIndexBuilt,
		ObjectType: "origin_index",
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata: map[string]any{
			"roots":  input.Roots,
			"owners": input.Owners,
		},
		OccurredAt: input.OccurredAt,
	}
}

func buildOwnerEvent(verb, objectType, objectID string, input OwnerEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if input.Path != "" {
		set("path", input.Path)
	}
	if input.Owner != "" {
		set("owner", input.Owner)
	}
	if input.Candidate != "" {
		set("candidate", input.Candidate)
	}
	if input.Location != "" {
		set("location", input.Location)
	}
	if input.Examined > 0 {
		set("examined", input.Examined)
	}
	if objectID == "" {
		objectID = objectType
	}
	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
