package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/mkhalish/parley/pkg/adapters/stt"
	"github.com/mkhalish/parley/pkg/adapters/tts"
	"github.com/mkhalish/parley/pkg/audio"
	"github.com/mkhalish/parley/pkg/dialogue"
	"github.com/mkhalish/parley/pkg/errorsx"
	"github.com/mkhalish/parley/pkg/frames"
	"github.com/mkhalish/parley/pkg/logging"
)

type Config struct {
	// SilenceThreshold is the inactivity gap that ends an utterance.
	SilenceThreshold time.Duration
	// GuardInterval keeps the session muted after playback so acoustic
	// echo of its own speech is not mistaken for caller input.
	GuardInterval time.Duration
	FrameBytes    int
	FrameInterval time.Duration
	GreetingText  string
	SourceFormat  audio.Format
	// StepTimeout bounds each external-capability call. Zero means no
	// timeout; a hung call then stalls this session's pipeline.
	StepTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.SilenceThreshold <= 0 {
		c.SilenceThreshold = 800 * time.Millisecond
	}
	if c.GuardInterval <= 0 {
		c.GuardInterval = 450 * time.Millisecond
	}
	if c.FrameBytes <= 0 {
		c.FrameBytes = 320
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = 20 * time.Millisecond
	}
	if c.GreetingText == "" {
		c.GreetingText = "Hello, thank you for calling. How can I help you today?"
	}
	if c.SourceFormat == "" {
		c.SourceFormat = audio.FormatMuLaw
	}
	return c
}

// Capabilities are the external collaborators one session depends on.
type Capabilities struct {
	Transcoder  *audio.Transcoder
	Recognizer  stt.Recognizer
	Synthesizer tts.Synthesizer
	Dialogue    *dialogue.Engine
	Greetings   *GreetingCache
}

// Sender transmits one outbound audio frame on the connection.
type Sender func(payload []byte) error

type (
	evStart        struct{}
	evMedia        struct{ payload []byte }
	evStop         struct{ reason string }
	evSegment      struct{}
	evGreetingDone struct{ err error }
	evReplyReady   struct{ text string }
	evCycleDone    struct{}
)

// Session orchestrates one phone call. All state mutation happens on a
// single event goroutine; timers, transport frames, and pipeline
// completions are delivered as events so reactions never interleave.
type Session struct {
	id      string
	callSID string
	cfg     Config
	caps    Capabilities
	send    Sender

	fsm       *stateMachine
	segmenter *SilenceSegmenter
	playback  Playback

	events      chan any
	buffer      [][]byte
	bufferBytes int

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	logger *slog.Logger
}

func New(id, callSID string, cfg Config, caps Capabilities, send Sender) *Session {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:       id,
		callSID:  callSID,
		cfg:      cfg,
		caps:     caps,
		send:     send,
		fsm:      newStateMachine(),
		playback: Playback{FrameBytes: cfg.FrameBytes, Interval: cfg.FrameInterval},
		events:   make(chan any, 512),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		logger: logging.NewComponentLogger(slog.Default(), "call_session").With(
			slog.String("stream_id", id),
			slog.String("call_sid", callSID),
		),
	}
	s.segmenter = NewSilenceSegmenter(cfg.SilenceThreshold, func() {
		s.post(evSegment{})
	})
	return s
}

// Start launches the event goroutine.
func (s *Session) Start() {
	go s.run()
}

// Deliver routes a transport frame into the session.
func (s *Session) Deliver(f frames.Frame) {
	switch fr := f.(type) {
	case frames.SystemFrame:
		switch fr.Name() {
		case frames.SystemCallStart:
			s.post(evStart{})
		case frames.SystemCallEnd:
			reason := fr.Meta()[frames.MetaCallEndReason]
			s.post(evStop{reason: reason})
		}
	case frames.AudioFrame:
		s.post(evMedia{payload: fr.RawPayload()})
	}
}

// Close ends the session from the owner's side (transport stop, drain).
func (s *Session) Close(reason string) {
	s.post(evStop{reason: reason})
}

func (s *Session) State() State { return s.fsm.State() }
func (s *Session) Muted() bool  { return s.fsm.Muted() }

// Done is closed once the event goroutine has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) post(ev any) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown("context_canceled")
			return
		case ev := <-s.events:
			if s.handle(ev) {
				return
			}
		}
	}
}

// handle processes one event. It returns true once the session is closed.
func (s *Session) handle(ev any) bool {
	switch ev := ev.(type) {
	case evStart:
		if err := s.fsm.Transition(StateGreeting); err != nil {
			s.logger.Warn("start_ignored", slog.String("state", s.fsm.State().String()))
			return false
		}
		s.logger.Info("call_started")
		go s.playGreeting()

	case evMedia:
		if s.fsm.State() == StateClosed {
			return false
		}
		// Frames are accepted even while muted so no audio is lost; the
		// segment handler no-ops outside LISTENING.
		s.buffer = append(s.buffer, ev.payload)
		s.bufferBytes += len(ev.payload)
		s.segmenter.Touch()

	case evSegment:
		if s.fsm.State() != StateListening {
			s.logger.Debug("segment_fire_ignored", slog.String("state", s.fsm.State().String()))
			return false
		}
		if s.bufferBytes == 0 {
			return false
		}
		utterance := flatten(s.buffer, s.bufferBytes)
		s.buffer = nil
		s.bufferBytes = 0
		if err := s.fsm.Transition(StateProcessing); err != nil {
			s.logger.Error("transition_failed", slog.String("error", err.Error()))
			return false
		}
		s.logger.Debug("utterance_ready", slog.Int("size_bytes", len(utterance)))
		go s.runPipeline(utterance)

	case evGreetingDone:
		if ev.err != nil {
			// A call that cannot be greeted is not recoverable.
			s.logger.Error("greeting_failed", slog.String("error", ev.err.Error()))
			s.shutdown("greeting_failed")
			return true
		}
		if err := s.fsm.Transition(StateListening); err != nil {
			return s.fsm.State() == StateClosed
		}
		s.logger.Info("listening")

	case evReplyReady:
		if err := s.fsm.Transition(StateSpeaking); err != nil {
			return s.fsm.State() == StateClosed
		}
		go s.speak(ev.text)

	case evCycleDone:
		if err := s.fsm.Transition(StateListening); err != nil {
			return s.fsm.State() == StateClosed
		}

	case evStop:
		s.logger.Info("call_ended", slog.String("reason", ev.reason))
		s.shutdown(ev.reason)
		return true
	}
	return false
}

func (s *Session) shutdown(reason string) {
	s.segmenter.Stop()
	if s.fsm.State() != StateClosed {
		_ = s.fsm.Transition(StateClosed)
	}
	s.cancel()
	_ = reason
}

// playGreeting obtains the opening line (cached or synthesized on demand),
// streams it, records the assistant turn, and waits out the guard
// interval. Synthesis failure skips playback but the call proceeds; a send
// failure is fatal to the session.
func (s *Session) playGreeting() {
	wire, ok := s.caps.Greetings.Lookup()
	if !ok {
		var err error
		wire, err = s.synthesizeWire(s.cfg.GreetingText)
		if err != nil {
			s.logger.Warn("greeting_synthesis_failed",
				slog.String("reason_code", string(errorsx.Reason(err))),
				slog.String("error", err.Error()))
			wire = nil
		}
	}
	if len(wire) > 0 {
		if err := s.playback.Stream(s.ctx, s.send, wire); err != nil {
			s.post(evGreetingDone{err: errorsx.Wrap(err, errorsx.ReasonTransportSend)})
			return
		}
	}
	s.caps.Dialogue.RecordTurn(dialogue.RoleAssistant, s.cfg.GreetingText)
	s.waitGuard()
	s.post(evGreetingDone{})
}

// runPipeline executes one transcribe-reply cycle for a flushed utterance
// buffer. Any failure aborts the cycle and returns the session to
// LISTENING; the caller simply loses one turn.
func (s *Session) runPipeline(utterance []byte) {
	ctx, cancel := s.stepCtx()
	defer cancel()

	pcm, err := s.caps.Transcoder.ToRecognizerFormat(utterance, s.cfg.SourceFormat)
	if err != nil {
		s.abortCycle(err)
		return
	}
	text, err := s.caps.Recognizer.Recognize(ctx, pcm)
	if err != nil {
		s.abortCycle(errorsx.Wrap(err, errorsx.ReasonRecognition))
		return
	}
	if text == "" {
		// Valid "no speech" result; nothing is recorded.
		s.logger.Debug("empty_transcript_discarded")
		s.post(evCycleDone{})
		return
	}
	s.caps.Dialogue.RecordTurn(dialogue.RoleCaller, text)

	reply, err := s.caps.Dialogue.Reply(ctx)
	if err != nil {
		s.abortCycle(err)
		return
	}
	if reply == "" {
		s.logger.Debug("empty_reply_discarded")
		s.post(evCycleDone{})
		return
	}
	s.caps.Dialogue.RecordTurn(dialogue.RoleAssistant, reply)
	s.post(evReplyReady{text: reply})
}

// speak synthesizes and streams the reply, then waits out the guard
// interval before the cycle completes. Playback on a closed connection is
// abandoned silently.
func (s *Session) speak(text string) {
	wire, err := s.synthesizeWire(text)
	if err != nil {
		s.abortCycle(err)
		return
	}
	if err := s.playback.Stream(s.ctx, s.send, wire); err != nil {
		s.logger.Warn("playback_send_failed", slog.String("error", err.Error()))
	}
	s.waitGuard()
	s.post(evCycleDone{})
}

// abortCycle drops the current transcribe-reply cycle. Failures outside
// the recoverable reason codes end the whole call instead.
func (s *Session) abortCycle(err error) {
	s.logger.Error("cycle_aborted",
		slog.String("reason_code", string(errorsx.Reason(err))),
		slog.String("error", err.Error()))
	if !errorsx.Recoverable(err) {
		s.post(evStop{reason: "pipeline_failure"})
		return
	}
	s.post(evCycleDone{})
}

func (s *Session) synthesizeWire(text string) ([]byte, error) {
	ctx, cancel := s.stepCtx()
	defer cancel()
	pcm, err := s.caps.Synthesizer.Synthesize(ctx, text)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonSynthesis)
	}
	return s.caps.Transcoder.ToWireFormat(pcm)
}

func (s *Session) stepCtx() (context.Context, context.CancelFunc) {
	if s.cfg.StepTimeout > 0 {
		return context.WithTimeout(s.ctx, s.cfg.StepTimeout)
	}
	return context.WithCancel(s.ctx)
}

func (s *Session) waitGuard() {
	select {
	case <-time.After(s.cfg.GuardInterval):
	case <-s.ctx.Done():
	}
}

func flatten(segments [][]byte, total int) []byte {
	out := make([]byte, 0, total)
	for _, seg := range segments {
		out = append(out, seg...)
	}
	return out
}
