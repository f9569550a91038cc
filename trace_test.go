package optid

import (
	"reflect"
	"testing"
)

func TestTraceJSONRoundTrip(t *testing.T) {
	trace := Trace{
		Path:  "renderDistance",
		Owner: "foo",
		Found: true,
		Candidates: []CandidateTrace{
			{Name: "net.minecraft.client.Options", Stage: StageBlocked, Rule: "net.minecraft."},
			{Name: "com.missing.Class", Stage: StageLoad, Err: "optid: candidate not loadable"},
			{Name: "com.foo.Thing", Stage: StageMatched, Location: "/mods/foo", Owner: "foo"},
		},
	}

	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if !reflect.DeepEqual(trace, decoded) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", trace, decoded)
	}

	if _, err := TraceFromJSON([]byte("{")); err == nil {
		t.Fatalf("expected malformed payload to fail")
	}
}

func TestTraceRecorderWithoutTrace(t *testing.T) {
	traceRecorder{}.add(CandidateTrace{Name: "ignored"})

	trace := Trace{}
	traceRecorder{trace: &trace}.add(CandidateTrace{Name: "kept"})
	if len(trace.Candidates) != 1 {
		t.Fatalf("expected recorded candidate")
	}
}
