package domain

// DocumentStatus is the lifecycle state reported by the remote service.
// The client never computes a status locally; it only displays what the
// last successful refresh returned.
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "PENDING"
	StatusProcessing DocumentStatus = "PROCESSING"
	StatusReady      DocumentStatus = "READY"
	StatusFailed     DocumentStatus = "FAILED"
)

type Document struct {
	ID       string         `json:"id"`
	Filename string         `json:"filename"`
	Status   DocumentStatus `json:"status"`
}

// Snapshot is one complete, immutable view of the server-owned document
// list. Registry state only ever changes by swapping whole snapshots, never
// by mutating one in place; consumers must treat a snapshot as read-only.
type Snapshot struct {
	docs []Document
	byID map[string]int
}

// NewSnapshot builds a snapshot preserving server-returned order. Duplicate
// ids keep the first occurrence so a snapshot never holds the same document
// twice.
func NewSnapshot(docs []Document) Snapshot {
	byID := make(map[string]int, len(docs))
	kept := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if _, seen := byID[doc.ID]; seen {
			continue
		}
		byID[doc.ID] = len(kept)
		kept = append(kept, doc)
	}
	return Snapshot{docs: kept, byID: byID}
}

func (s Snapshot) Len() int {
	return len(s.docs)
}

// Documents returns the documents in display order. The slice is a copy so
// callers cannot mutate snapshot internals.
func (s Snapshot) Documents() []Document {
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}

func (s Snapshot) Get(id string) (Document, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return Document{}, false
	}
	return s.docs[idx], true
}

// ReadyCount gates query submission: a question may only be sent when at
// least one document is fully processed.
func (s Snapshot) ReadyCount() int {
	count := 0
	for _, doc := range s.docs {
		if doc.Status == StatusReady {
			count++
		}
	}
	return count
}

func (s Snapshot) CountByStatus() map[DocumentStatus]int {
	counts := make(map[DocumentStatus]int, 4)
	for _, doc := range s.docs {
		counts[doc.Status]++
	}
	return counts
}
