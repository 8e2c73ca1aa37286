// Package assistant turns customer complaints into product suggestions,
// answering from the record store when a similar complaint was seen before.
package assistant

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"smart-store-agent/internal/matcher"
	"smart-store-agent/internal/storage"
	"smart-store-agent/internal/suggest"
)

const WelcomeMessage = `👋 **Welcome to Smart Store Agent!**

Just tell me how you're feeling or what you're dealing with, like:
- "I have a headache"
- "I'm feeling nauseous"
- "My child has a fever"

I'll suggest a suitable **over-the-counter product or medicine**, and explain why it works.

Let's begin!`

const emptyMessageHint = "Tell me what's bothering you, for example \"I have a headache\"."

// Session is the outbound side of a chat front-end.
type Session interface {
	ID() string
	Send(text string) error
}

// Handler reacts to the two events a chat front-end delivers.
type Handler interface {
	OnSessionStart(ctx context.Context, s Session) error
	OnMessage(ctx context.Context, s Session, text string) error
}

// Suggester produces a free-text suggestion for a complaint.
type Suggester interface {
	Suggest(ctx context.Context, problem string) (string, error)
}

// Assistant is the Handler used by every front-end.
type Assistant struct {
	store     storage.Store
	suggester Suggester
	recorder  storage.Recorder
	now       func() time.Time

	// one load/append/save cycle at a time
	mu sync.Mutex
}

type Option func(*Assistant)

// WithRecorder logs every answered complaint.
func WithRecorder(r storage.Recorder) Option {
	return func(a *Assistant) { a.recorder = r }
}

func New(store storage.Store, suggester Suggester, opts ...Option) *Assistant {
	a := &Assistant{store: store, suggester: suggester, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	return a
}

// ForChannel returns a Handler that tags recorded events with the front-end name.
func (a *Assistant) ForChannel(name string) Handler {
	return &channelHandler{a: a, channel: name}
}

func (a *Assistant) OnSessionStart(ctx context.Context, s Session) error {
	return s.Send(WelcomeMessage)
}

func (a *Assistant) OnMessage(ctx context.Context, s Session, text string) error {
	return a.handle(ctx, s, text, "")
}

func (a *Assistant) handle(ctx context.Context, s Session, text, channel string) error {
	problem := strings.TrimSpace(text)
	if problem == "" {
		return s.Send(emptyMessageHint)
	}

	rec, hit, err := a.resolve(ctx, problem)
	if err != nil {
		return err
	}
	if hit {
		log.Printf("Cache hit for session %s: %q -> %q", s.ID(), problem, rec.Product)
	} else {
		log.Printf("Cache miss for session %s: %q -> %q", s.ID(), problem, rec.Product)
	}

	if a.recorder != nil {
		ev := storage.Event{
			Timestamp: a.now().UTC(),
			Session:   s.ID(),
			Channel:   channel,
			Problem:   problem,
			Product:   rec.Product,
			CacheHit:  hit,
		}
		if err := a.recorder.AppendInteraction(ev); err != nil {
			log.Printf("failed to record interaction: %v", err)
		}
	}

	return s.Send(FormatSuggestion(rec))
}

// resolve finds a cached record for problem or creates and persists a new one.
func (a *Assistant) resolve(ctx context.Context, problem string) (storage.Record, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	records, err := a.store.Load()
	if err != nil {
		return storage.Record{}, false, fmt.Errorf("load records: %w", err)
	}
	if existing, ok := matcher.Find(problem, records); ok {
		return existing, true, nil
	}

	reply, err := a.suggester.Suggest(ctx, problem)
	if err != nil {
		return storage.Record{}, false, err
	}
	product, description := suggest.Parse(reply)
	rec := storage.Record{Problem: problem, Product: product, Description: description}

	if err := a.store.Save(append(records, rec)); err != nil {
		return storage.Record{}, false, fmt.Errorf("save records: %w", err)
	}
	return rec, false, nil
}

// FormatSuggestion renders a record the way it is shown to the customer.
func FormatSuggestion(r storage.Record) string {
	return fmt.Sprintf("**Suggested Product:** %s\n\n%s", r.Product, r.Description)
}

type channelHandler struct {
	a       *Assistant
	channel string
}

func (h *channelHandler) OnSessionStart(ctx context.Context, s Session) error {
	return h.a.OnSessionStart(ctx, s)
}

func (h *channelHandler) OnMessage(ctx context.Context, s Session, text string) error {
	return h.a.handle(ctx, s, text, h.channel)
}
