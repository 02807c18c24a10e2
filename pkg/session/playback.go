package session

import (
	"context"
	"time"
)

// Playback paces a completed audio buffer onto the wire in fixed-size
// frames at fixed intervals. The receiving telephony endpoint plays frames
// as they arrive and has no backpressure signal, so wall-clock duration
// must approximate the real-time duration of the audio.
type Playback struct {
	FrameBytes int
	Interval   time.Duration
}

// Split cuts buf into consecutive frames of FrameBytes; the last frame may
// be shorter. Frames alias buf, they are not copies.
func (p Playback) Split(buf []byte) [][]byte {
	if len(buf) == 0 {
		return nil
	}
	size := p.FrameBytes
	if size <= 0 {
		size = 320
	}
	out := make([][]byte, 0, (len(buf)+size-1)/size)
	for start := 0; start < len(buf); start += size {
		end := start + size
		if end > len(buf) {
			end = len(buf)
		}
		out = append(out, buf[start:end])
	}
	return out
}

// Stream transmits each frame in order, waiting Interval between
// transmissions. A canceled context abandons the remaining frames without
// error; a send failure is returned to the caller.
func (p Playback) Stream(ctx context.Context, send func([]byte) error, buf []byte) error {
	frames := p.Split(buf)
	if len(frames) == 0 {
		return nil
	}
	interval := p.Interval
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for i, frame := range frames {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-timer.C:
			}
			timer.Reset(interval)
		}
		if err := send(frame); err != nil {
			return err
		}
	}
	return nil
}
