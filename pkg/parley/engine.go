package parley

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/mkhalish/parley/pkg/adapters/stt"
	"github.com/mkhalish/parley/pkg/adapters/tts"
	"github.com/mkhalish/parley/pkg/audio"
	"github.com/mkhalish/parley/pkg/dialogue"
	"github.com/mkhalish/parley/pkg/frames"
	"github.com/mkhalish/parley/pkg/llm"
	"github.com/mkhalish/parley/pkg/logging"
	"github.com/mkhalish/parley/pkg/runner"
	"github.com/mkhalish/parley/pkg/session"
	"github.com/mkhalish/parley/pkg/transports"
)

// Engine owns the transport, the shared capability clients, and one
// session per active call. Frames from the transport are routed to their
// session by stream ID.
type Engine struct {
	cfg        Config
	transport  transports.Transport
	providers  *ProviderRegistry
	runner     *runner.LifecycleRunner
	recognizer stt.Recognizer
	synth      tts.Synthesizer
	adapter    llm.Adapter
	transcoder *audio.Transcoder
	greetings  *session.GreetingCache
	sessionCfg session.Config

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*session.Session
}

type EngineOptions struct {
	Config    Config
	Providers *ProviderRegistry
	Transport transports.Transport
}

// NewEngine validates the configuration and constructs every shared
// capability. Vendor misconfiguration surfaces here, not mid-call.
func NewEngine(opts EngineOptions) (*Engine, error) {
	cfg := opts.Config
	SetDefaultLogger(cfg.LogLevel, cfg.LogFormat)

	slog.Info("parley_init",
		"environment", cfg.Environment,
		"llm_provider", cfg.Vendors.LLM.Provider,
		"stt_provider", cfg.Vendors.STT.Provider,
		"tts_provider", cfg.Vendors.TTS.Provider,
		"transport", cfg.Transports.Provider,
	)

	providers := opts.Providers
	if providers == nil {
		providers = DefaultProviderRegistry()
	}

	source, err := audio.ParseFormat(cfg.Session.SourceFormat)
	if err != nil {
		return nil, err
	}
	recognizer, err := providers.BuildSTT(cfg.Vendors.STT.Provider, cfg)
	if err != nil {
		return nil, fmt.Errorf("build stt: %w", err)
	}
	synth, err := providers.BuildTTS(cfg.Vendors.TTS.Provider, cfg)
	if err != nil {
		return nil, fmt.Errorf("build tts: %w", err)
	}
	adapter, err := providers.BuildLLM(cfg.Vendors.LLM.Provider, cfg)
	if err != nil {
		return nil, fmt.Errorf("build llm: %w", err)
	}

	transcoder := audio.NewTranscoder(source)
	sessionCfg := session.Config{
		SilenceThreshold: time.Duration(cfg.Session.SilenceMS) * time.Millisecond,
		GuardInterval:    time.Duration(cfg.Session.GuardMS) * time.Millisecond,
		FrameBytes:       cfg.Session.FrameBytes,
		FrameInterval:    time.Duration(cfg.Session.FrameIntervalMS) * time.Millisecond,
		GreetingText:     cfg.Session.Greeting,
		SourceFormat:     source,
		StepTimeout:      time.Duration(cfg.Session.StepTimeoutMS) * time.Millisecond,
	}

	greetings := session.NewGreetingCache(func(ctx context.Context) ([]byte, error) {
		pcm, err := synth.Synthesize(ctx, sessionCfg.GreetingText)
		if err != nil {
			return nil, err
		}
		return transcoder.ToWireFormat(pcm)
	})

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		cfg:        cfg,
		transport:  opts.Transport,
		providers:  providers,
		recognizer: recognizer,
		synth:      synth,
		adapter:    adapter,
		transcoder: transcoder,
		greetings:  greetings,
		sessionCfg: sessionCfg,
		ctx:        ctx,
		cancel:     cancel,
		sessions:   make(map[string]*session.Session),
	}

	hooks := runner.Hooks{
		OnStart: func() {
			fields := []any{"message", "Parley Engine Ready"}
			if rr, ok := opts.Transport.(transports.ReadyReporter); ok {
				for k, v := range rr.ReadyFields() {
					fields = append(fields, k, v)
				}
			}
			slog.Info("engine_ready", fields...)
		},
		OnStop: func() {
			slog.Info("shutdown", "goroutines", runtime.NumGoroutine(), "active_calls", e.ActiveCalls())
		},
	}
	drainer := runner.DrainerFunc(func() error {
		if e.transport != nil {
			_ = e.transport.Stop()
		}
		e.closeAllSessions("drain")
		return nil
	})
	e.runner = runner.NewLifecycleRunner(drainer, hooks, 30*time.Second)
	return e, nil
}

func (e *Engine) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if e.transport != nil {
		if err := e.transport.Start(ctx); err != nil {
			return err
		}
		go e.routeTransport(ctx)
	}
	go e.warmGreeting(ctx)
	go func() {
		_ = e.runner.Run(ctx)
	}()
	return nil
}

func (e *Engine) Stop() error {
	e.cancel()
	return e.runner.Stop()
}

func (e *Engine) warmGreeting(ctx context.Context) {
	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := e.greetings.EnsureReady(warmCtx); err != nil {
		// Non-fatal: sessions synthesize the greeting themselves on miss.
		slog.Warn("greeting_warm_failed", "error", err.Error())
	}
}

func (e *Engine) routeTransport(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-e.transport.Recv():
			if !ok {
				return
			}
			e.route(f)
		}
	}
}

func (e *Engine) route(f frames.Frame) {
	meta := f.Meta()
	streamID := meta[frames.MetaStreamID]
	if streamID == "" {
		return
	}
	if sf, ok := f.(frames.SystemFrame); ok && sf.Name() == frames.SystemCallStart {
		e.openSession(streamID, meta).Deliver(f)
		return
	}
	e.mu.Lock()
	s := e.sessions[streamID]
	e.mu.Unlock()
	if s == nil {
		return
	}
	s.Deliver(f)
}

func (e *Engine) openSession(streamID string, meta map[string]string) *session.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if existing := e.sessions[streamID]; existing != nil {
		return existing
	}
	caps := session.Capabilities{
		Transcoder:  e.transcoder,
		Recognizer:  e.recognizer,
		Synthesizer: e.synth,
		Dialogue: dialogue.NewEngine(e.adapter, dialogue.Options{
			MaxHistory: e.cfg.Dialogue.MaxHistory,
			Prompt:     e.cfg.Dialogue.Prompt,
		}),
		Greetings: e.greetings,
	}
	s := session.New(streamID, meta[frames.MetaCallSID], e.sessionCfg, caps, e.senderFor(streamID))
	e.sessions[streamID] = s
	s.Start()
	go func() {
		<-s.Done()
		e.mu.Lock()
		if e.sessions[streamID] == s {
			delete(e.sessions, streamID)
		}
		e.mu.Unlock()
	}()
	return s
}

func (e *Engine) senderFor(streamID string) session.Sender {
	return func(payload []byte) error {
		meta := map[string]string{
			frames.MetaEncoding: string(e.transcoder.WireFormat()),
		}
		af := frames.NewAudioFrame(streamID, time.Now().UnixNano(), payload, 8000, 1, meta)
		return e.transport.Send(af)
	}
}

func (e *Engine) closeAllSessions(reason string) {
	e.mu.Lock()
	open := make([]*session.Session, 0, len(e.sessions))
	for _, s := range e.sessions {
		open = append(open, s)
	}
	e.mu.Unlock()
	for _, s := range open {
		s.Close(reason)
	}
	deadline := time.After(20 * time.Second)
	for _, s := range open {
		select {
		case <-s.Done():
		case <-deadline:
			return
		}
	}
}

func (e *Engine) ActiveCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

func (e *Engine) Transport() transports.Transport { return e.transport }

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Health() error {
	if e.transport == nil {
		return fmt.Errorf("missing transport")
	}
	return nil
}

func SetDefaultLogger(level, format string) {
	lvl := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		slog.SetDefault(logging.InitLogger(lvl))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
