package frames

import (
	"testing"
	"time"
)

func TestAudioFrameMetaIsolation(t *testing.T) {
	meta := map[string]string{MetaCallSID: "CA1"}
	f := NewAudioFrame("stream-1", time.Now().UnixNano(), []byte{1, 2, 3}, 8000, 1, meta)

	got := f.Meta()
	if got[MetaStreamID] != "stream-1" {
		t.Fatalf("expected stream id merged, got %q", got[MetaStreamID])
	}
	got[MetaCallSID] = "mutated"
	if f.Meta()[MetaCallSID] != "CA1" {
		t.Fatalf("expected frame meta unaffected by caller mutation")
	}
}

func TestAudioFrameDataCopy(t *testing.T) {
	payload := []byte{9, 8, 7}
	f := NewAudioFrame("stream-1", 0, payload, 8000, 1, nil)
	d := f.Data()
	d[0] = 0
	if f.RawPayload()[0] != 9 {
		t.Fatalf("expected Data to return a copy")
	}
}

func TestSystemFrameName(t *testing.T) {
	f := NewSystemFrame("stream-1", 0, SystemCallStart, nil)
	if f.Kind() != KindSystem || f.Name() != SystemCallStart {
		t.Fatalf("unexpected system frame: %v %q", f.Kind(), f.Name())
	}
}
