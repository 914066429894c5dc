package codes

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Registry owns the short-code records. Reads always observe the last
// committed state; mutations to the same code are serialized.
type Registry struct {
	repo       RecordRepository
	generator  CodeGenerator
	codeLength int
	now        func() time.Time

	// invalidate is called with the previous destination domain when an
	// edit actually changes the domain component.
	invalidate func(domain string)

	locks sync.Map // code -> *sync.Mutex
}

func NewRegistry(repo RecordRepository, generator CodeGenerator, codeLength int) *Registry {
	if codeLength <= 0 {
		codeLength = 6
	}

	return &Registry{
		repo:       repo,
		generator:  generator,
		codeLength: codeLength,
		now:        time.Now,
		invalidate: func(string) {},
	}
}

// OnDomainChange registers the verdict invalidation hook.
func (r *Registry) OnDomainChange(fn func(domain string)) {
	if fn != nil {
		r.invalidate = fn
	}
}

func (r *Registry) lockCode(code string) func() {
	v, _ := r.locks.LoadOrStore(code, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Create registers a new record under a freshly generated code, retrying on
// collision.
func (r *Registry) Create(ctx context.Context, in CreateInput) (*Record, error) {
	normalized, err := ValidateAndNormalizeURL(in.DestinationURL)
	if err != nil {
		return nil, ErrInvalidURL
	}

	now := r.now().UTC()
	record := &Record{
		DestinationURL:   normalized,
		OwnerID:          strings.TrimSpace(in.OwnerID),
		Title:            strings.TrimSpace(in.Title),
		Active:           true,
		ShowPreview:      in.ShowPreview,
		AnalyticsEnabled: in.AnalyticsEnabled,
		Color:            in.Color,
		Background:       in.Background,
		CreatedAt:        now,
		UpdatedAt:        now,
		ExpiresAt:        in.ExpiresAt,
	}

	const maxAttempts = 10
	for range maxAttempts {
		code, err := r.generator.Generate(r.codeLength)
		if err != nil {
			return nil, err
		}
		record.Code = code

		if err := r.repo.Insert(ctx, record); err != nil {
			if err == ErrCodeTaken {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, ErrCodeTaken
}

// Resolve returns the record for a code that is active and unexpired.
// Unknown, inactive and expired codes are indistinguishable to the caller.
func (r *Registry) Resolve(ctx context.Context, code string) (*Record, error) {
	record, err := r.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	if !record.Resolvable(r.now()) {
		return nil, ErrNotFound
	}

	return record, nil
}

// Get returns the record regardless of active/expiration state. Used by the
// management API.
func (r *Registry) Get(ctx context.Context, code string) (*Record, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNotFound
	}

	return r.repo.FindByCode(ctx, code)
}

// Upsert applies a partial edit. The destination is validated before any
// state changes; on a domain change the previous domain's cached verdict is
// invalidated.
func (r *Registry) Upsert(ctx context.Context, code string, fields EditFields) (*Record, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNotFound
	}

	if fields.DestinationURL != nil {
		normalized, err := ValidateAndNormalizeURL(*fields.DestinationURL)
		if err != nil {
			return nil, ErrInvalidURL
		}
		fields.DestinationURL = &normalized
	}

	unlock := r.lockCode(code)
	defer unlock()

	prevDomain := ""
	if fields.DestinationURL != nil {
		prev, err := r.repo.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		prevDomain = Domain(prev.DestinationURL)
	}

	updated, err := r.repo.Update(ctx, code, fields, r.now().UTC())
	if err != nil {
		return nil, err
	}

	if fields.DestinationURL != nil {
		if newDomain := Domain(updated.DestinationURL); newDomain != prevDomain {
			r.invalidate(prevDomain)
		}
	}

	return updated, nil
}

// Deactivate clears the active flag. The record and its scan history are
// kept.
func (r *Registry) Deactivate(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrNotFound
	}

	unlock := r.lockCode(code)
	defer unlock()

	return r.repo.Deactivate(ctx, code, r.now().UTC())
}
