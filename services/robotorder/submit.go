package robotorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"robotorder/lib/browser"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var ErrSubmissionFailed = errors.New("failed to submit order")

var errReceiptAbsent = errors.New("no receipt after submitting")

type SubmitState int

const (
	Idle SubmitState = iota
	Attempting
	Succeeded
	Failed
)

func (s SubmitState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Attempting:
		return "attempting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("SubmitState(%d)", int(s))
}

// Submission is the outcome of submitting one order. Attempts counts every
// click of the submit control, including the one that succeeded.
type Submission struct {
	State       SubmitState
	Attempts    int
	MaxAttempts int
	LastErr     error
}

func NewSubmission(maxAttempts int) *Submission {
	return &Submission{State: Idle, MaxAttempts: maxAttempts}
}

// receiptSettle bounds how long an attempt waits for the receipt to render
// before counting it. A rejected order never shows one.
const receiptSettle = 2 * time.Second

// attempt clicks submit once and reports whether a receipt showed up.
func attempt(ctx context.Context, page browser.Page, sel Selectors) error {
	err := page.Click(ctx, sel.Submit)
	if err != nil {
		return fmt.Errorf("click submit: %w", err)
	}

	settleCtx, cancel := context.WithTimeout(ctx, receiptSettle)
	err = page.WaitVisible(settleCtx, sel.Receipt)
	cancel()
	if err != nil {
		slog.DebugContext(ctx, "receipt not visible yet", "err", err)
	}

	n, err := page.Count(ctx, sel.Receipt)
	if err != nil {
		return fmt.Errorf("look for receipt: %w", err)
	}
	if n == 0 {
		return errReceiptAbsent
	}
	return nil
}

// Run drives the submission from Idle to Succeeded or Failed. A failed
// attempt, whether the receipt is absent or an interaction errored, is
// retried until MaxAttempts attempts were made.
func (s *Submission) Run(ctx context.Context, page browser.Page, sel Selectors) error {
	ctx, span := tracer.Start(ctx, "Submission.Run")
	defer span.End()

	if s.State != Idle {
		return fmt.Errorf("submission already %s", s.State)
	}
	s.State = Attempting

	for s.State == Attempting {
		slog.InfoContext(ctx, "submitting order", "attempt", s.Attempts+1, "max_attempts", s.MaxAttempts)

		err := attempt(ctx, page, sel)
		s.Attempts++
		if err == nil {
			s.State = Succeeded
			submissionAttempts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", true)))
			break
		}
		submissionAttempts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", false)))

		s.LastErr = err
		slog.WarnContext(ctx, "submission attempt failed", "attempt", s.Attempts, "err", err)

		if ctx.Err() != nil {
			s.State = Failed
			return ctx.Err()
		}
		if s.Attempts >= s.MaxAttempts {
			s.State = Failed
		}
	}

	span.SetAttributes(attribute.Int("attempts", s.Attempts))
	if s.State == Failed {
		span.RecordError(s.LastErr)
		span.SetStatus(codes.Error, ErrSubmissionFailed.Error())
		return fmt.Errorf("%w after %d attempts: %w", ErrSubmissionFailed, s.Attempts, s.LastErr)
	}
	slog.InfoContext(ctx, "submittal successful", "attempts", s.Attempts)
	return nil
}
