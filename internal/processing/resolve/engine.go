package resolve

import (
	"context"
	"errors"

	"github.com/GSMS-B/ProjectQR/internal/processing/codes"
	"github.com/GSMS-B/ProjectQR/internal/processing/scans"
	"github.com/GSMS-B/ProjectQR/internal/processing/security"
)

// Outcome is the terminal state of one resolution request.
type Outcome string

const (
	OutcomeNotFound       Outcome = "not_found"
	OutcomeDirectRedirect Outcome = "direct_redirect"
	OutcomePreview        Outcome = "preview"
	OutcomeBlocked        Outcome = "blocked"
)

// Decision carries everything the transport layer needs to render a terminal
// state. Record and Verdict are nil for OutcomeNotFound.
type Decision struct {
	Outcome Outcome
	Record  *codes.Record
	Verdict *security.Verdict
}

// ScanRecorder is the fire-and-forget analytics hook.
type ScanRecorder interface {
	Record(code string, req scans.RequestContext)
}

// Engine orchestrates registry, validation and scan recording into a single
// decision per inbound resolution.
type Engine struct {
	registry *codes.Registry
	verifier security.Verifier
	recorder ScanRecorder
}

func NewEngine(registry *codes.Registry, verifier security.Verifier, recorder ScanRecorder) *Engine {
	return &Engine{
		registry: registry,
		verifier: verifier,
		recorder: recorder,
	}
}

// Resolve runs the full decision state machine for a code.
//
//	unknown/inactive/expired        -> NotFound
//	tier danger                     -> Blocked
//	tier caution, or preview opt-in -> Preview
//	tier safe, no preview           -> DirectRedirect
//
// Preview wins over caution even when the record has previews disabled. A
// scan event is recorded on every terminal state except NotFound, and only
// when the record has analytics enabled.
func (e *Engine) Resolve(ctx context.Context, code string, req scans.RequestContext) (*Decision, error) {
	record, err := e.registry.Resolve(ctx, code)
	if err != nil {
		if errors.Is(err, codes.ErrNotFound) {
			return &Decision{Outcome: OutcomeNotFound}, nil
		}
		return nil, err
	}

	verdict := e.verifier.Verify(ctx, codes.Domain(record.DestinationURL))

	var outcome Outcome
	switch {
	case verdict.Tier == security.TierDanger:
		outcome = OutcomeBlocked
	case verdict.Tier == security.TierCaution || record.ShowPreview:
		outcome = OutcomePreview
	default:
		outcome = OutcomeDirectRedirect
	}

	e.recordScan(record, req)

	return &Decision{Outcome: outcome, Record: record, Verdict: verdict}, nil
}

// Preview forces the Preview terminal state for a resolvable code. The
// verdict is still computed for display, and the scan is still recorded.
func (e *Engine) Preview(ctx context.Context, code string, req scans.RequestContext) (*Decision, error) {
	record, err := e.registry.Resolve(ctx, code)
	if err != nil {
		if errors.Is(err, codes.ErrNotFound) {
			return &Decision{Outcome: OutcomeNotFound}, nil
		}
		return nil, err
	}

	verdict := e.verifier.Verify(ctx, codes.Domain(record.DestinationURL))

	e.recordScan(record, req)

	return &Decision{Outcome: OutcomePreview, Record: record, Verdict: verdict}, nil
}

func (e *Engine) recordScan(record *codes.Record, req scans.RequestContext) {
	if e.recorder == nil || !record.AnalyticsEnabled {
		return
	}
	e.recorder.Record(record.Code, req)
}
