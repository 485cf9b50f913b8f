package registry

import (
	"github.com/dativetop/dativetop-server/internal/logging"
	"github.com/dativetop/dativetop-server/internal/model"
)

// subscriberBuffer bounds how far a subscriber may lag before snapshots
// are dropped for it.
const subscriberBuffer = 16

// Subscribe returns a channel that receives the full document after every
// successful PutInstance, and a cancel func that closes it. A subscriber
// that falls behind misses snapshots rather than blocking writers.
func (r *Registry) Subscribe() (<-chan model.Registry, func()) {
	ch := make(chan model.Registry, subscriberBuffer)

	r.subMu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = ch
	r.subMu.Unlock()

	cancel := func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		if c, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// publish must be called with r.mu held.
func (r *Registry) publish(snap model.Registry) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for id, ch := range r.subs {
		select {
		case ch <- snap.Clone():
		default:
			r.logger.Warn("dropping snapshot for slow subscriber", logging.Field{Key: "subscriber", Value: id})
		}
	}
}
