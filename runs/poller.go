// Package runs drives a single assistant run to a terminal status,
// streaming every observed transition as an ordered event sequence.
//
// The poller is a state machine keyed on the run's status. Each
// provider interaction goes through the resilient llm client, so
// transient failures retry transparently and anything unrecoverable
// aborts the stream with a classified error.
package runs

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/obahamonde/cms-nlp-plugins/llm"
)

// API is the subset of provider run operations the poller needs.
type API interface {
	RetrieveRun(ctx context.Context, threadID, runID string) (openai.Run, error)
	ListRunSteps(ctx context.Context, threadID, runID string) (openai.RunStepList, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []openai.ToolOutput) (openai.Run, error)
}

// EventKind names the payload carried by an Event.
type EventKind string

const (
	// EventKindSnapshot carries the current run state.
	EventKindSnapshot EventKind = "run"
	// EventKindStep carries one run step newly observed by the poller.
	EventKindStep EventKind = "run.step"
)

// Event is one unit of the poll stream. Exactly one of Run or Step is
// set, matching Kind.
type Event struct {
	Kind EventKind       `json:"kind"`
	Run  *openai.Run     `json:"run,omitempty"`
	Step *openai.RunStep `json:"step,omitempty"`
}

// Config holds the poll intervals. Zero values fall back to defaults;
// tests shrink them to keep poll loops fast.
type Config struct {
	// QueuedInterval separates polls while the run sits in the queue
	// and on the unrecognized-status fallback path.
	QueuedInterval time.Duration
	// ActiveInterval separates polls while the run is making progress.
	ActiveInterval time.Duration
}

// DefaultConfig returns the standard poll intervals.
func DefaultConfig() Config {
	return Config{
		QueuedInterval: time.Second,
		ActiveInterval: 500 * time.Millisecond,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.QueuedInterval <= 0 {
		c.QueuedInterval = d.QueuedInterval
	}
	if c.ActiveInterval <= 0 {
		c.ActiveInterval = d.ActiveInterval
	}
	return c
}

// Stream is a single-subscriber sequence of run events. Next advances
// to the next event and reports whether one is available; after Next
// returns false, Err reports why the stream ended (nil on a clean
// terminal status).
type Stream interface {
	Next() bool
	Event() Event
	Err() error
	Close() error
}

// Poller polls assistant runs to completion. It holds only immutable
// configuration and is safe for concurrent use.
type Poller struct {
	api    API
	logger zerolog.Logger
	cfg    Config
}

// NewPoller creates a poller over the given run API.
func NewPoller(api API, logger zerolog.Logger, cfg Config) *Poller {
	return &Poller{
		api:    api,
		logger: logger.With().Str("component", "runs").Logger(),
		cfg:    cfg.normalized(),
	}
}

// Stream starts polling the run and returns its event stream. The
// toolOutputs map, keyed by tool call id, supplies the answers for a
// run that pauses on requires_action; a pause with no matching output
// aborts the stream. Cancelling ctx or calling Close stops the poll
// loop at its next suspension point.
func (p *Poller) Stream(ctx context.Context, threadID, runID string, toolOutputs map[string]string) Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &runStream{
		events: make(chan Event),
		cancel: cancel,
	}

	logger := p.logger.With().
		Str("thread_id", threadID).
		Str("run_id", runID).
		Logger()

	go func() {
		defer close(s.events)
		s.err = p.poll(ctx, logger, s, threadID, runID, toolOutputs)
		if s.err != nil && ctx.Err() == nil {
			logger.Error().Err(s.err).Msg("run poll aborted")
		}
	}()

	return s
}

// poll runs the status state machine until a terminal status, an
// unrecovered error, or cancellation. It returns nil on a terminal
// status and the classified error otherwise.
func (p *Poller) poll(ctx context.Context, logger zerolog.Logger, s *runStream, threadID, runID string, toolOutputs map[string]string) error {
	run, err := p.api.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return err
	}

	// Step events are emitted once each; re-listing on a later tick
	// must not replay steps the subscriber already has.
	seen := make(map[string]bool)

	for {
		logger.Debug().Str("status", string(run.Status)).Msg("run status observed")

		switch run.Status {
		case openai.RunStatusQueued:
			if !s.emit(ctx, snapshot(run)) {
				return ctx.Err()
			}
			if !llm.Wait(ctx, p.cfg.QueuedInterval) {
				return ctx.Err()
			}

		case openai.RunStatusInProgress, openai.RunStatusCancelling:
			if err := p.emitNewSteps(ctx, s, threadID, runID, seen); err != nil {
				return err
			}
			if !llm.Wait(ctx, p.cfg.ActiveInterval) {
				return ctx.Err()
			}

		case openai.RunStatusRequiresAction:
			outputs, err := pendingOutputs(run, toolOutputs)
			if err != nil {
				return err
			}
			next, err := p.api.SubmitToolOutputs(ctx, threadID, runID, outputs)
			if err != nil {
				return err
			}
			if !s.emit(ctx, snapshot(next)) {
				return ctx.Err()
			}
			if !llm.Wait(ctx, p.cfg.ActiveInterval) {
				return ctx.Err()
			}
			// The submit response is the fresh state; skip the fetch.
			run = next
			continue

		case openai.RunStatusCompleted:
			if err := p.emitNewSteps(ctx, s, threadID, runID, seen); err != nil {
				return err
			}
			// One active interval separates the last step from the
			// terminal snapshot, matching the in-progress cadence.
			if !llm.Wait(ctx, p.cfg.ActiveInterval) {
				return ctx.Err()
			}
			if !s.emit(ctx, snapshot(run)) {
				return ctx.Err()
			}
			logger.Info().Msg("run completed")
			return nil

		case openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired:
			if !s.emit(ctx, snapshot(run)) {
				return ctx.Err()
			}
			logger.Info().Str("status", string(run.Status)).Msg("run reached terminal status")
			return nil

		default:
			if !s.emit(ctx, snapshot(run)) {
				return ctx.Err()
			}
			if !llm.Wait(ctx, p.cfg.QueuedInterval) {
				return ctx.Err()
			}
		}

		run, err = p.api.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			return err
		}
	}
}

// emitNewSteps lists the run's steps and emits the ones not yet seen,
// in list order.
func (p *Poller) emitNewSteps(ctx context.Context, s *runStream, threadID, runID string, seen map[string]bool) error {
	list, err := p.api.ListRunSteps(ctx, threadID, runID)
	if err != nil {
		return err
	}
	for i := range list.RunSteps {
		step := list.RunSteps[i]
		if seen[step.ID] {
			continue
		}
		seen[step.ID] = true
		if !s.emit(ctx, Event{Kind: EventKindStep, Step: &step}) {
			return ctx.Err()
		}
	}
	return nil
}

// pendingOutputs matches caller-supplied outputs to the tool calls the
// provider is waiting on, preserving the provider's order.
func pendingOutputs(run openai.Run, supplied map[string]string) ([]openai.ToolOutput, error) {
	if run.RequiredAction == nil || run.RequiredAction.SubmitToolOutputs == nil {
		return nil, llm.NewProviderError("run requires action but lists no tool calls", nil)
	}

	calls := run.RequiredAction.SubmitToolOutputs.ToolCalls
	outputs := make([]openai.ToolOutput, 0, len(calls))
	for _, call := range calls {
		output, ok := supplied[call.ID]
		if !ok {
			return nil, llm.NewRequestError("missing tool output for call "+call.ID, 400, nil)
		}
		outputs = append(outputs, openai.ToolOutput{
			ToolCallID: call.ID,
			Output:     output,
		})
	}
	return outputs, nil
}

func snapshot(run openai.Run) Event {
	r := run
	return Event{Kind: EventKindSnapshot, Run: &r}
}

// runStream hands events from the poll goroutine to the subscriber
// over an unbuffered channel. err is written before the channel
// closes, so reads after Next returns false are safe.
type runStream struct {
	events chan Event
	cancel context.CancelFunc
	cur    Event
	err    error
}

func (s *runStream) emit(ctx context.Context, ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Next blocks until the next event is available. It returns false once
// the stream has ended.
func (s *runStream) Next() bool {
	ev, ok := <-s.events
	if !ok {
		return false
	}
	s.cur = ev
	return true
}

// Event returns the event most recently produced by Next.
func (s *runStream) Event() Event {
	return s.cur
}

// Err returns the error that ended the stream, nil for a clean
// terminal status or consumer cancellation.
func (s *runStream) Err() error {
	if s.err != nil && !errors.Is(s.err, context.Canceled) {
		return s.err
	}
	return nil
}

// Close stops the poll loop and drains any in-flight event. Safe to
// call more than once.
func (s *runStream) Close() error {
	s.cancel()
	for range s.events {
	}
	return nil
}
