package frames

type Kind string

const (
	KindAudio  Kind = "audio"
	KindSystem Kind = "system"
)

// Frame is the unit of traffic between the transport and the call engine.
type Frame interface {
	Kind() Kind
	TS() int64
	Meta() map[string]string
}

type AudioFrame struct {
	ts   int64
	data []byte
	rate int
	ch   int
	meta map[string]string
}

func NewAudioFrame(streamID string, ts int64, data []byte, rate, ch int, meta map[string]string) AudioFrame {
	return AudioFrame{
		ts:   ts,
		data: data,
		rate: rate,
		ch:   ch,
		meta: mergeMeta(streamID, meta),
	}
}

func (a AudioFrame) Kind() Kind              { return KindAudio }
func (a AudioFrame) TS() int64               { return a.ts }
func (a AudioFrame) Meta() map[string]string { return cloneMeta(a.meta) }
func (a AudioFrame) Data() []byte            { return append([]byte(nil), a.data...) }
func (a AudioFrame) RawPayload() []byte      { return a.data }
func (a AudioFrame) Rate() int               { return a.rate }
func (a AudioFrame) Channels() int           { return a.ch }

// SystemFrame carries connection lifecycle events such as call_start and call_end.
type SystemFrame struct {
	ts   int64
	name string
	meta map[string]string
}

func NewSystemFrame(streamID string, ts int64, name string, meta map[string]string) SystemFrame {
	return SystemFrame{
		ts:   ts,
		name: name,
		meta: mergeMeta(streamID, meta),
	}
}

func (s SystemFrame) Kind() Kind              { return KindSystem }
func (s SystemFrame) TS() int64               { return s.ts }
func (s SystemFrame) Meta() map[string]string { return cloneMeta(s.meta) }
func (s SystemFrame) Name() string            { return s.name }

func mergeMeta(streamID string, meta map[string]string) map[string]string {
	out := make(map[string]string, 2+len(meta))
	if streamID != "" {
		out[MetaStreamID] = streamID
	}
	for k, v := range meta {
		out[k] = v
	}
	return out
}

func cloneMeta(meta map[string]string) map[string]string {
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
