package transports

import (
	"context"

	"github.com/mkhalish/parley/pkg/frames"
)

// Transport is a vendor-agnostic boundary moving audio and lifecycle frames
// between the telephony network and the call engine. Implementations own
// their network lifecycle.
type Transport interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Recv() <-chan frames.Frame
	Send(frames.Frame) error
}

// OutboundDialer allows transports to initiate outbound calls.
type OutboundDialer interface {
	Dial(ctx context.Context, to, from, url string) (callSID string, err error)
}

// DialOptions carries optional outbound dial settings.
type DialOptions struct {
	SendDigits string
}

// OutboundDialerWithOptions extends dialing with optional parameters.
type OutboundDialerWithOptions interface {
	DialWithOptions(ctx context.Context, to, from, url string, opts DialOptions) (callSID string, err error)
}

// ReadyReporter exposes readiness metadata such as webhook URLs, used for
// informational logging only.
type ReadyReporter interface {
	ReadyFields() map[string]any
}
