package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()
	for i := 0; i < 3; i++ {
		Track("test.op")()
	}
	snap := Snapshot()
	if len(snap) != 1 || snap[0].Name != "test.op" || snap[0].Calls != 3 {
		t.Fatalf("snapshot: %+v", snap)
	}
	ResetFrame()
	if len(Snapshot()) != 0 {
		t.Fatal("ResetFrame left entries behind")
	}
}

func TestTopNOrdersBySlowest(t *testing.T) {
	ResetFrame()
	mu.Lock()
	frameTotals["fast"] = time.Millisecond
	frameCalls["fast"] = 1
	frameTotals["slow"] = 4200 * time.Microsecond
	frameCalls["slow"] = 2
	mu.Unlock()
	defer ResetFrame()

	got := TopN(5)
	want := "slow:4.2ms(x2), fast:1ms"
	if got != want {
		t.Fatalf("TopN: got %q, want %q", got, want)
	}
	if one := TopN(1); strings.Contains(one, "fast") {
		t.Fatalf("TopN(1) included second entry: %q", one)
	}
}
