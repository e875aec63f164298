// Package notify fans out email notifications for selection events.
// Dispatch is concurrent but bounded, per-recipient failures are
// isolated, and every attempt produces one audit event. The dispatcher
// makes no idempotency guarantee: callers invoke it once per state
// transition.
package notify

import (
	"context"
	"fmt"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kjohn5218/route-selection-sub000/go/selection"
)

// defaultFanOut bounds concurrent sends when no limit is configured.
const defaultFanOut = 8

// Message is one email to one recipient.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// Result aggregates a dispatch. A non-zero Failed count is not an
// error: partial failure is an expected outcome the caller reports.
type Result struct {
	Sent   int
	Failed int
}

// Sender is the email transport boundary. No ordering or delivery
// guarantee is assumed beyond per-call success or failure.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// AuditFunc records one audit event per send attempt.
type AuditFunc func(ctx context.Context, ev selection.AuditEvent) error

// Dispatcher sends message batches through a Sender.
type Dispatcher struct {
	sender      Sender
	audit       AuditFunc
	maxInFlight int
}

// NewDispatcher returns a Dispatcher with the given fan-out bound.
// maxInFlight <= 0 selects the default.
func NewDispatcher(sender Sender, audit AuditFunc, maxInFlight int) *Dispatcher {
	if maxInFlight <= 0 {
		maxInFlight = defaultFanOut
	}
	return &Dispatcher{sender: sender, audit: audit, maxInFlight: maxInFlight}
}

// Dispatch sends the batch with bounded concurrency and returns the
// aggregate. On cancellation, in-flight sends complete but queued sends
// are not attempted; the aggregate reflects what was attempted. One
// recipient's failure never cancels another's send.
func (d *Dispatcher) Dispatch(ctx context.Context, actor string, batch []Message) Result {
	var group errgroup.Group
	group.SetLimit(d.maxInFlight)

	var sent, failed atomic.Int64
	for i := range batch {
		if ctx.Err() != nil {
			break
		}
		var m = batch[i]

		group.Go(func() error {
			// A send slot may free up after cancellation; don't start
			// new work then.
			if ctx.Err() != nil {
				return nil
			}

			var err = d.sender.Send(ctx, m.Recipient, m.Subject, m.Body)
			var ev = selection.AuditEvent{
				UserID:   actor,
				Action:   selection.ActionNotificationSent,
				Resource: m.Recipient,
				Details:  fmt.Sprintf("subject=%q", m.Subject),
			}
			if err != nil {
				failed.Add(1)
				sendsCounter.WithLabelValues("failed").Inc()
				ev.Action = selection.ActionNotificationFail
				ev.Details = fmt.Sprintf("subject=%q err=%q", m.Subject, err)
				log.WithFields(log.Fields{
					"recipient": m.Recipient,
					"err":       err,
				}).Warn("notification send failed")
			} else {
				sent.Add(1)
				sendsCounter.WithLabelValues("sent").Inc()
			}

			if d.audit != nil {
				// Audit uses the background context so that a cancelled
				// dispatch still records its completed attempts.
				if auditErr := d.audit(context.Background(), ev); auditErr != nil {
					log.WithFields(log.Fields{
						"recipient": m.Recipient,
						"err":       auditErr,
					}).Error("failed to record notification attempt")
				}
			}
			return nil
		})
	}
	_ = group.Wait()

	return Result{Sent: int(sent.Load()), Failed: int(failed.Load())}
}
