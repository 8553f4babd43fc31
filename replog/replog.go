// Package replog implements the append-only replication log dispatch
// writes to after a successful Modify, mirroring modify.c's post-success
// replog(be, LDAP_REQ_MODIFY, ndn, mods, 0) call.
package replog

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/lni/dragonboat/v4/logger"

	"github.com/dirdkv/dird/entry"
)

var log = logger.GetLogger("replog")

// Entry is one record in the replication log.
type Entry struct {
	OpID    string      `json:"opId"`
	Op      string      `json:"op"`
	Name    string      `json:"name"`
	ModList []ModRecord `json:"modList"`
}

// ModRecord is the JSON-safe projection of an entry.Modification: the
// real type carries a matching-rule function pointer on its descriptor,
// which encoding/json cannot serialize, so the log only ever stores the
// attribute name plus the op and values.
type ModRecord struct {
	Op     string   `json:"op"`
	Attr   string   `json:"attr"`
	Values []string `json:"values"`
}

// FromModList projects a ModList into its loggable form.
func FromModList(modList entry.ModList) []ModRecord {
	out := make([]ModRecord, len(modList))
	for i, m := range modList {
		name := ""
		if m.Desc != nil {
			name = m.Desc.Name
		}
		out[i] = ModRecord{Op: m.Op.String(), Attr: name, Values: m.Values}
	}
	return out
}

// Sink accepts successful-operation records. Implementations must be
// safe for concurrent use; the log is append-only and externally
// synchronized per spec section 5's shared-resource list.
type Sink interface {
	Append(e Entry) error
}

// FileSink appends newline-delimited JSON records to a file, fsyncing
// after every write so a crash never loses an acknowledged record.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewFileSink opens (creating if necessary) path for append.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, err
	}
	return &FileSink{file: f, enc: json.NewEncoder(f)}, nil
}

// Append writes e as one JSON line and fsyncs the file.
func (s *FileSink) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(e); err != nil {
		log.Errorf("replog: failed to encode entry %s: %v", e.OpID, err)
		return err
	}
	return s.file.Sync()
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// MemorySink is an in-memory Sink, used by tests.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemorySink builds an empty in-memory sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

// Entries returns a snapshot of everything appended so far.
func (s *MemorySink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
