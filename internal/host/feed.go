package host

import (
	"errors"
	"sync"

	"github.com/relabs-tech/deviceinfo/internal/device"
)

// errAlreadySubscribed is returned for a second subscriber on one host.
var errAlreadySubscribed = errors.New("host: already subscribed")

// feed hands events to at most one subscriber. Each host delivers from a
// single goroutine, which is what keeps events in order.
type feed struct {
	mu      sync.Mutex
	handler func(device.Event)
}

// subscribe installs fn until the returned subscription is cancelled.
// onCancel, when set, runs once after fn is removed.
func (f *feed) subscribe(fn func(device.Event), onCancel func()) (device.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handler != nil {
		return nil, errAlreadySubscribed
	}
	f.handler = fn
	return device.SubscriptionFunc(func() {
		f.mu.Lock()
		f.handler = nil
		f.mu.Unlock()
		if onCancel != nil {
			onCancel()
		}
	}), nil
}

// deliver hands ev to the current subscriber, if any.
func (f *feed) deliver(ev device.Event) {
	f.mu.Lock()
	fn := f.handler
	f.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}
