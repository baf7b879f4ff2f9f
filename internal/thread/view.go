package thread

import (
	"sync"

	"github.com/PaulBabatuyi/surepay-gRPC/internal/data"
)

// View is the list a client renders for one thread. Local appends make a
// sent message show up before the store confirms it, but the next snapshot
// replaces the whole list: the store is the only source of truth.
type View struct {
	mu      sync.Mutex
	applied []*data.Message
	local   []*data.Message
}

// Apply replaces the view with a snapshot, discarding local appends.
func (v *View) Apply(s Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.applied = append([]*data.Message(nil), s.Messages...)
	v.local = nil
}

// AppendLocal shows msg optimistically until the next snapshot.
func (v *View) AppendLocal(msg *data.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.local = append(v.local, msg)
}

// Messages returns the rendered sequence, oldest first.
func (v *View) Messages() []*data.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*data.Message, 0, len(v.applied)+len(v.local))
	out = append(out, v.applied...)
	return append(out, v.local...)
}

// Inverted returns the same sequence newest first, for lists rendered
// bottom-up.
func (v *View) Inverted() []*data.Message {
	msgs := v.Messages()
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs
}
