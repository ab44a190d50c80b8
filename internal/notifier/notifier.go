// Package notifier provides a simple broadcast mechanism for state changes.
package notifier

import "sync"

// Topic names the part of the state that changed.
type Topic string

// Topics broadcast by the state container and the session store.
const (
	TopicConnections Topic = "connections"
	TopicPipelines   Topic = "pipelines"
	TopicSession     Topic = "session"
)

// Notifier broadcasts change pings to subscribed listeners.
// Listeners receive an empty struct when something they follow changed
// and should re-query the container.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan struct{}]map[Topic]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan struct{}]map[Topic]struct{}),
	}
}

// Subscribe returns a channel that receives pings for the given topics.
// With no topics the listener follows every topic.
// The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe(topics ...Topic) chan struct{} {
	ch := make(chan struct{}, 1)

	var filter map[Topic]struct{}
	if len(topics) > 0 {
		filter = make(map[Topic]struct{}, len(topics))
		for _, t := range topics {
			filter[t] = struct{}{}
		}
	}

	n.mu.Lock()
	n.listeners[ch] = filter
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	_, ok := n.listeners[ch]
	delete(n.listeners, ch)
	n.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Broadcast pings every listener following topic.
// Non-blocking: a listener with a pending ping is skipped.
func (n *Notifier) Broadcast(topic Topic) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch, filter := range n.listeners {
		if filter != nil {
			if _, ok := filter[topic]; !ok {
				continue
			}
		}
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
