package login

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Registry hands out one Form per browser id. Forms that are not touched for the
// configured TTL are dropped; a submission still in flight keeps running and finishes
// on the dropped form.
type Registry struct {
	forms   *cache.Cache
	newForm func() *Form
	mu      sync.Mutex
}

// NewRegistry creates a registry whose entries expire after ttl of inactivity
func NewRegistry(ttl time.Duration, newForm func() *Form, logger logrus.FieldLogger) *Registry {
	forms := cache.New(ttl, ttl*2)
	if logger != nil {
		forms.OnEvicted(func(id string, _ interface{}) {
			logger.WithField("browser_id", id).Debug("Login form expired")
		})
	}
	return &Registry{
		forms:   forms,
		newForm: newForm,
	}
}

// Get returns the form for id, creating it on first use, and refreshes its expiry
func (r *Registry) Get(id string) *Form {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, found := r.forms.Get(id); found {
		form := v.(*Form)
		r.forms.SetDefault(id, form)
		return form
	}

	form := r.newForm()
	r.forms.SetDefault(id, form)
	return form
}

// Peek returns the form for id without creating it or refreshing its expiry
func (r *Registry) Peek(id string) (*Form, bool) {
	v, found := r.forms.Get(id)
	if !found {
		return nil, false
	}
	return v.(*Form), true
}

// Len returns the number of live forms, including ones not yet purged after expiring
func (r *Registry) Len() int {
	return r.forms.ItemCount()
}
