// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package execution

// Step is the outcome of handling one notification.
type Step struct {
	Stop   bool
	Result Result
}

// Subscriber handles notifications one at a time.
type Subscriber interface {
	Notify(n Notification) Step
}

// Process folds notifications through sub until it asks to stop.
func Process(sub Subscriber, notifications []Notification) Result {
	result := Success
	for _, n := range notifications {
		step := sub.Notify(n)
		result = step.Result
		if step.Stop {
			break
		}
	}
	return result
}

// ProcessingSubscriber validates each notification and, while everything succeeds,
// hands it to the observer. The first non-success result stops processing.
type ProcessingSubscriber struct {
	stateless StatelessValidator
	stateful  StatefulValidator
	observer  Observer
	vctx      *ValidatorContext
	octx      *ObserverContext

	result Result

	undoable     bool
	observed     []Notification
	receiptsMark int
}

// NewProcessingSubscriber creates a subscriber. When undoable, observed notifications are
// remembered so that Undo can roll them back.
func NewProcessingSubscriber(cfg *Config, vctx *ValidatorContext, octx *ObserverContext, undoable bool) *ProcessingSubscriber {
	s := &ProcessingSubscriber{
		stateless: cfg.StatelessValidator,
		stateful:  cfg.StatefulValidator,
		observer:  cfg.Observer,
		vctx:      vctx,
		octx:      octx,
		result:    Success,
		undoable:  undoable,
	}
	if octx.Receipts != nil {
		s.receiptsMark = octx.Receipts.Len()
	}
	return s
}

func (s *ProcessingSubscriber) Notify(n Notification) Step {
	if !s.result.IsSuccess() {
		return Step{Stop: true, Result: s.result}
	}

	if s.stateless != nil {
		s.result = Aggregate(s.result, s.stateless.Validate(n))
	}
	if s.result.IsSuccess() && s.stateful != nil {
		s.result = Aggregate(s.result, s.stateful.Validate(n, s.vctx))
	}
	if !s.result.IsSuccess() {
		return Step{Stop: true, Result: s.result}
	}

	if s.observer != nil {
		s.observer.Notify(n, s.octx)
	}
	if s.undoable {
		s.observed = append(s.observed, n)
	}
	return Step{Result: s.result}
}

// Result returns the aggregate result so far.
func (s *ProcessingSubscriber) Result() Result { return s.result }

// Undo rolls back every observed notification in reverse order and drops the
// receipts they produced. It is a no-op for a subscriber created without undo.
func (s *ProcessingSubscriber) Undo() {
	if s.observer != nil && len(s.observed) > 0 {
		NewUndoSubscriber(s.observer, s.octx).Replay(s.observed)
	}
	s.observed = nil
	if s.octx.Receipts != nil {
		s.octx.Receipts.Truncate(s.receiptsMark)
	}
}

// UndoSubscriber notifies the observer in Rollback direction.
type UndoSubscriber struct {
	observer Observer
	ctx      ObserverContext
}

// NewUndoSubscriber creates an undo subscriber sharing everything but the direction with ctx.
func NewUndoSubscriber(observer Observer, ctx *ObserverContext) *UndoSubscriber {
	u := &UndoSubscriber{observer: observer, ctx: *ctx}
	u.ctx.Direction = Rollback
	return u
}

func (u *UndoSubscriber) Notify(n Notification) Step {
	u.observer.Notify(n, &u.ctx)
	return Step{Result: Success}
}

// Replay rolls back notifications in reverse order of observation.
func (u *UndoSubscriber) Replay(observed []Notification) {
	reversed := make([]Notification, 0, len(observed))
	for i := len(observed) - 1; i >= 0; i-- {
		reversed = append(reversed, observed[i])
	}
	Process(u, reversed)
}
