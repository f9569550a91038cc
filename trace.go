package optid

import (
	"encoding/json"
)

// Stage names the resolution step at which a candidate frame stopped.
type Stage string

const (
	StageBlocked   Stage = "blocked"
	StageDenied    Stage = "denied"
	StageLoad      Stage = "load"
	StageLocation  Stage = "location"
	StageUnindexed Stage = "unindexed"
	StageMatched   Stage = "matched"
)

// Trace captures how an owner lookup walked the call stack.
type Trace struct {
	Path       string           `json:"path"`
	Owner      string           `json:"owner,omitempty"`
	Found      bool             `json:"found"`
	HostMatch  bool             `json:"host_match,omitempty"`
	Candidates []CandidateTrace `json:"candidates"`
}

// CandidateTrace details one frame visited during resolution. Blocked frames
// are recorded too so callers can see that no loading was attempted for them.
type CandidateTrace struct {
	Name     string `json:"name"`
	Stage    Stage  `json:"stage"`
	Rule     string `json:"rule,omitempty"`
	Location string `json:"location,omitempty"`
	Owner    string `json:"owner,omitempty"`
	Err      string `json:"err,omitempty"`
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

type traceRecorder struct {
	trace *Trace
}

func (r traceRecorder) add(entry CandidateTrace) {
	if r.trace == nil {
		return
	}
	r.trace.Candidates = append(r.trace.Candidates, entry)
}
