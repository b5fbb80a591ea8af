package tenant

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Store is the read path the resolver needs from storage. Implementations
// return ErrFacilityNotFound for unknown identifiers and load the full
// aggregate, courts and operating hours included.
type Store interface {
	FacilityByID(ctx context.Context, id int64) (*Facility, error)
	FacilityBySlug(ctx context.Context, slug string) (*Facility, error)
}

// ConfigurationError marks a startup-class misconfiguration, such as a default
// facility slug that resolves to nothing. It is never a per-request 404.
type ConfigurationError struct {
	Reason string
}

func (e ConfigurationError) Error() string {
	return "tenant configuration error: " + e.Reason
}

// Resolver maps a request-supplied facility identifier (slug or numeric id)
// to a facility aggregate.
type Resolver struct {
	store       Store
	defaultSlug string
}

// NewResolver builds a resolver. defaultSlug may be empty, which disables the
// legacy no-identifier fallback entirely.
func NewResolver(store Store, defaultSlug string) *Resolver {
	return &Resolver{
		store:       store,
		defaultSlug: strings.ToLower(strings.TrimSpace(defaultSlug)),
	}
}

// Resolve looks up a facility by slug (case-insensitive, trimmed) or by
// numeric id (exact). An empty identifier falls back to the configured
// default slug when one is set.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*Facility, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return r.ResolveDefault(ctx)
	}

	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil && id > 0 {
		return r.store.FacilityByID(ctx, id)
	}

	return r.store.FacilityBySlug(ctx, strings.ToLower(identifier))
}

// ResolveDefault resolves the configured default facility. A missing or
// inactive default is a configuration error, not a not-found.
func (r *Resolver) ResolveDefault(ctx context.Context) (*Facility, error) {
	if r.defaultSlug == "" {
		return nil, ErrFacilityNotFound
	}

	facility, err := r.store.FacilityBySlug(ctx, r.defaultSlug)
	if err != nil {
		if errors.Is(err, ErrFacilityNotFound) {
			return nil, ConfigurationError{Reason: fmt.Sprintf("default facility %q does not exist", r.defaultSlug)}
		}
		return nil, err
	}
	if !facility.Active {
		return nil, ConfigurationError{Reason: fmt.Sprintf("default facility %q is inactive", r.defaultSlug)}
	}
	return facility, nil
}
