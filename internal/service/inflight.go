package service

import "sync"

const (
	opExpand    = "expand"
	opDescribe  = "describe"
	opSearch    = "search"
	opRecommend = "recommend"
)

// inflightSet marks (session, operation) pairs whose slow collaborator call
// runs outside the session lock. Claims are never queued.
type inflightSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInflightSet() *inflightSet {
	return &inflightSet{keys: make(map[string]struct{})}
}

func (f *inflightSet) claim(sessionId string, op string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := op + ":" + sessionId
	if _, busy := f.keys[key]; busy {
		return false
	}
	f.keys[key] = struct{}{}
	return true
}

func (f *inflightSet) release(sessionId string, op string) {
	f.mu.Lock()
	delete(f.keys, op+":"+sessionId)
	f.mu.Unlock()
}
