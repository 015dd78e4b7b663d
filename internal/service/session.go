package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alexivanou/placefinder/internal/debounce"
	"github.com/alexivanou/placefinder/internal/model"
	"github.com/alexivanou/placefinder/internal/store"
	"github.com/alexivanou/placefinder/internal/suggest"
)

// Event types pushed to a session client
const (
	EventOptions = "options"
	EventState   = "state"
)

// Event is pushed to the client of a session
type Event struct {
	Type    string                     `json:"type"`
	Options []model.AutocompleteOption `json:"options,omitempty"`
	State   *model.PlacesState         `json:"state,omitempty"`
	Input   string                     `json:"input"`
}

// Session is the search box of one connected client. Keystrokes are
// debounced; results of superseded operations are dropped using per-session
// sequence numbers, one for suggestions and one for selections.
type Session struct {
	store    *store.Store
	blender  *suggest.Blender
	resolver *Resolver
	logger   *zap.Logger
	emit     func(Event)

	ctx    context.Context
	cancel context.CancelFunc

	debouncer   *debounce.Debouncer[keystroke]
	unsubscribe func()
	wg          sync.WaitGroup

	mu         sync.Mutex
	input      string
	focused    bool
	options    []model.AutocompleteOption
	suggestSeq uint64
	resolveSeq uint64
	closed     bool
}

// keystroke is the debounced payload: the input and the suggestion sequence it was typed at
type keystroke struct {
	text string
	seq  uint64
}

func newSession(parent context.Context, s *store.Store, blender *suggest.Blender, resolver *Resolver, delay time.Duration, logger *zap.Logger, emit func(Event)) *Session {
	ctx, cancel := context.WithCancel(parent)
	sess := &Session{
		store:    s,
		blender:  blender,
		resolver: resolver,
		logger:   logger,
		emit:     emit,
		ctx:      ctx,
		cancel:   cancel,
		options:  []model.AutocompleteOption{},
	}
	sess.debouncer = debounce.New(delay, sess.refresh)
	sess.unsubscribe = s.Subscribe(func(state model.PlacesState) {
		sess.push(Event{Type: EventState, State: &state})
	})
	return sess
}

// Input records a keystroke and schedules a debounced suggestion refresh
func (s *Session) Input(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.input = text
	s.suggestSeq++
	seq := s.suggestSeq
	s.mu.Unlock()

	s.debouncer.Call(keystroke{text: text, seq: seq})
}

// Focus shows history and fallback suggestions immediately when the input is short
func (s *Session) Focus() {
	history := s.store.History()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.focused = true
	if !s.blender.IsShort(s.input) {
		s.mu.Unlock()
		return
	}
	s.suggestSeq++
	options := s.blender.Empty(history)
	s.options = options
	input := s.input
	s.mu.Unlock()

	s.push(Event{Type: EventOptions, Options: options, Input: input})
}

// Blur marks the input as unfocused. Shown options are left as they are.
func (s *Session) Blur() {
	s.mu.Lock()
	s.focused = false
	s.mu.Unlock()
}

// Options returns the options last shown
func (s *Session) Options() []model.AutocompleteOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AutocompleteOption(nil), s.options...)
}

// Text returns the current search box content
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Select resolves option in the background. The input and options are cleared
// right away and any pending suggestion refresh is invalidated.
func (s *Session) Select(option model.AutocompleteOption) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.input = ""
	s.options = []model.AutocompleteOption{}
	s.suggestSeq++
	s.resolveSeq++
	seq := s.resolveSeq
	s.wg.Add(1)
	s.mu.Unlock()

	s.push(Event{Type: EventOptions, Options: []model.AutocompleteOption{}})

	go func() {
		defer s.wg.Done()
		outcome := s.resolver.SelectOption(s.ctx, option, s.resolveGuard(seq))
		s.logger.Debug("Option resolved", zap.String("value", option.Value), zap.String("outcome", string(outcome)))
	}()
}

// Enter submits the current input as a free-text search in the background
func (s *Session) Enter() {
	s.mu.Lock()
	text := s.input
	if s.closed || strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return
	}
	s.resolveSeq++
	seq := s.resolveSeq
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		outcome := s.resolver.Submit(s.ctx, text, s.resolveGuard(seq))
		s.logger.Debug("Query submitted", zap.String("outcome", string(outcome)))
	}()
}

// Close stops the session and waits for its background work
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.debouncer.Stop()
	s.cancel()
	s.unsubscribe()
	s.wg.Wait()
}

func (s *Session) resolveGuard(seq uint64) Guard {
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return !s.closed && s.resolveSeq == seq
	}
}

// refresh runs on the debounce timer with the last keystroke
func (s *Session) refresh(k keystroke) {
	text, seq := k.text, k.seq

	s.mu.Lock()
	if s.closed || seq != s.suggestSeq {
		s.mu.Unlock()
		return
	}
	focused := s.focused
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	options := s.blender.Blend(s.ctx, text, focused, s.store.History())

	s.mu.Lock()
	if s.closed || seq != s.suggestSeq {
		s.mu.Unlock()
		s.logger.Debug("Dropping stale suggestions", zap.String("input", text))
		return
	}
	s.options = options
	s.mu.Unlock()

	s.push(Event{Type: EventOptions, Options: options, Input: text})
}

func (s *Session) push(event Event) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed || s.emit == nil {
		return
	}
	s.emit(event)
}
