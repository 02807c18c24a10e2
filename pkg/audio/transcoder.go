package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/mkhalish/parley/pkg/errorsx"
)

// Format identifies a telephony audio byte encoding at 8 kHz mono.
type Format string

const (
	FormatMuLaw    Format = "mulaw"
	FormatALaw     Format = "alaw"
	FormatLinear16 Format = "linear16"
)

// ParseFormat maps a config string onto a known Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatMuLaw, FormatALaw, FormatLinear16:
		return Format(s), nil
	case "":
		return FormatMuLaw, nil
	}
	return "", errorsx.Wrap(fmt.Errorf("unknown audio format %q", s), errorsx.ReasonConfiguration)
}

// Transcoder converts between the wire encoding used on the transport and
// the 16-bit little-endian linear PCM the recognizer and synthesizer speak.
type Transcoder struct {
	wire Format
}

func NewTranscoder(wire Format) *Transcoder {
	if wire == "" {
		wire = FormatMuLaw
	}
	return &Transcoder{wire: wire}
}

func (t *Transcoder) WireFormat() Format { return t.wire }

// ToRecognizerFormat decodes an inbound payload in the given source format
// into linear16 bytes suitable for recognition.
func (t *Transcoder) ToRecognizerFormat(payload []byte, src Format) ([]byte, error) {
	switch src {
	case FormatMuLaw:
		out := make([]byte, len(payload)*2)
		for i, b := range payload {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(ulawToLinear(b)))
		}
		return out, nil
	case FormatALaw:
		out := make([]byte, len(payload)*2)
		for i, b := range payload {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(alawToLinear(b)))
		}
		return out, nil
	case FormatLinear16:
		if len(payload)%2 != 0 {
			return nil, errorsx.Wrap(fmt.Errorf("linear16 payload has odd length %d", len(payload)), errorsx.ReasonConversion)
		}
		return append([]byte(nil), payload...), nil
	}
	return nil, errorsx.Wrap(fmt.Errorf("unknown source format %q", src), errorsx.ReasonConversion)
}

// ToWireFormat encodes linear16 synthesizer output into the wire encoding.
func (t *Transcoder) ToWireFormat(pcm []byte) ([]byte, error) {
	if len(pcm)%2 != 0 {
		return nil, errorsx.Wrap(fmt.Errorf("linear16 payload has odd length %d", len(pcm)), errorsx.ReasonConversion)
	}
	switch t.wire {
	case FormatLinear16:
		return append([]byte(nil), pcm...), nil
	case FormatMuLaw:
		out := make([]byte, len(pcm)/2)
		for i := range out {
			out[i] = linearToULaw(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
		}
		return out, nil
	case FormatALaw:
		out := make([]byte, len(pcm)/2)
		for i := range out {
			out[i] = linearToALaw(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
		}
		return out, nil
	}
	return nil, errorsx.Wrap(fmt.Errorf("unknown wire format %q", t.wire), errorsx.ReasonConversion)
}
