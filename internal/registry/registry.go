package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dativetop/dativetop-server/internal/logging"
	"github.com/dativetop/dativetop-server/internal/model"
)

var (
	// ErrInvalidInstance is returned when an update payload fails validation.
	ErrInvalidInstance = errors.New("invalid OLD instance")

	// ErrKeyMismatch is returned when a seed stores an instance under a key
	// other than its own URL.
	ErrKeyMismatch = errors.New("instance key does not match its url")
)

// Registry owns the in-memory DativeTop document for the lifetime of the
// server process. Every instance is keyed by its own URL; writes replace
// entries wholesale and nothing is ever deleted.
type Registry struct {
	mu     sync.RWMutex
	doc    model.Registry
	logger logging.Logger

	subMu  sync.Mutex
	subs   map[int]chan model.Registry
	nextID int
}

// NewRegistry returns a Registry holding a copy of seed.
func NewRegistry(seed model.Registry, logger logging.Logger) (*Registry, error) {
	if logger == nil {
		logger = logging.NewStdoutLogger("registry")
	}
	for key, inst := range seed.OLDInstances {
		if key != inst.URL {
			return nil, fmt.Errorf("seed entry %q: %w", key, ErrKeyMismatch)
		}
	}
	doc := seed.Clone()
	return &Registry{
		doc:    doc,
		logger: logger,
		subs:   make(map[int]chan model.Registry),
	}, nil
}

// Snapshot returns a copy of the current document.
func (r *Registry) Snapshot() model.Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc.Clone()
}

// Validate checks an update payload. Only the url is required: it becomes
// the instance's key.
func (r *Registry) Validate(inst model.Instance) error {
	if inst.URL == "" {
		return fmt.Errorf("%w: missing url", ErrInvalidInstance)
	}
	return nil
}

// PutInstance stores inst under its URL, replacing any previous entry, and
// returns the full document as it stands after the write.
func (r *Registry) PutInstance(ctx context.Context, inst model.Instance) (model.Registry, error) {
	if err := ctx.Err(); err != nil {
		return model.Registry{}, err
	}
	if err := r.Validate(inst); err != nil {
		return model.Registry{}, err
	}

	inst = inst.Clone()

	r.mu.Lock()
	prev, existed := r.doc.OLDInstances[inst.URL]
	r.doc.OLDInstances[inst.URL] = inst
	snap := r.doc.Clone()
	// Feed order must match write order.
	r.publish(snap)
	r.mu.Unlock()

	if existed {
		r.logger.Info("replaced OLD instance",
			logging.Field{Key: "url", Value: inst.URL},
			logging.Field{Key: "diff", Value: instanceDiff(prev, inst)},
		)
	} else {
		r.logger.Info("added OLD instance", logging.Field{Key: "url", Value: inst.URL})
	}

	return snap, nil
}

// Len reports the number of OLD instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.doc.OLDInstances)
}
