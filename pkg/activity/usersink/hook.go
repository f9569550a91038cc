package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-optid/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook forwards attribution events to a go-users ActivitySink so they land in
// the same audit trail as the rest of the settings framework.
type Hook struct {
	Sink usertypes.ActivitySink
}

// Notify maps the event into an ActivityRecord. Actor and tenant IDs that are
// not UUIDs are recorded as uuid.Nil and kept verbatim in the record data.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	data := cloneMap(normalized.Metadata)
	actorID, rawActor := parseUUID(normalized.ActorID)
	if rawActor != "" {
		data = setData(data, "actor", rawActor)
	}
	tenantID, rawTenant := parseUUID(normalized.TenantID)
	if rawTenant != "" {
		data = setData(data, "tenant", rawTenant)
	}

	record := usertypes.ActivityRecord{
		ActorID:    actorID,
		UserID:     actorID,
		TenantID:   tenantID,
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       data,
		OccurredAt: normalized.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}
	return h.Sink.Log(ctx, record)
}

// parseUUID returns the parsed ID, or uuid.Nil plus the raw input when the
// input is set but not a UUID.
func parseUUID(input string) (uuid.UUID, string) {
	value := strings.TrimSpace(input)
	if value == "" {
		return uuid.Nil, ""
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, value
	}
	return id, ""
}

func setData(data map[string]any, key string, value any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	data[key] = value
	return data
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
