package vocabulary

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/yungbote/response-validator/internal/domain/ecosystem"
	"github.com/yungbote/response-validator/internal/platform/apperr"
	"github.com/yungbote/response-validator/internal/platform/logger"
)

// Persister writes replaced books durably. SaveBooks must replace every row
// of the books named in t and leave other books untouched.
type Persister interface {
	SaveBooks(ctx context.Context, t ecosystem.Tables) error
}

type Store struct {
	log     *logger.Logger
	persist Persister
	common  *Lexicon
	bad     *Lexicon

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewStore starts with an empty snapshot. A nil persister keeps the store
// memory-only.
func NewStore(log *logger.Logger, persist Persister, common, bad *Lexicon) *Store {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{
		log:     log.With("service", "VocabularyStore"),
		persist: persist,
		common:  common,
		bad:     bad,
	}
	s.current.Store(newSnapshot(nil, common, bad))
	return s
}

// Snapshot returns the last committed view. It never blocks on writers.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// HasBook reports whether the current snapshot holds vuid.
func (s *Store) HasBook(vuid string) bool {
	return s.current.Load().HasBook(vuid)
}

// Load publishes previously persisted tables without writing them back.
func (s *Store) Load(t ecosystem.Tables) error {
	books, err := ecosystem.Assemble(t)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "vocabulary.Load", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Store(newSnapshot(books, s.common, s.bad))
	s.log.Info("Vocabulary tables loaded", "books", len(books))
	return nil
}

// ReplaceBooks swaps in every book of t, keeping the other books as they
// are. The new snapshot is published only after the persister succeeds.
func (s *Store) ReplaceBooks(ctx context.Context, t ecosystem.Tables) (*Snapshot, error) {
	const op = "vocabulary.ReplaceBooks"
	if t.Empty() {
		return nil, apperr.New(apperr.CodeInvalidArgument, op, "no books to import", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	t = assignOrdinals(prev, t)

	incoming, err := ecosystem.Assemble(t)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeManifestParse, op, err)
	}
	replaced := make(map[string]struct{}, len(incoming))
	for _, b := range incoming {
		replaced[b.VUID] = struct{}{}
	}
	next := make([]*ecosystem.Book, 0, len(prev.order)+len(incoming))
	for _, b := range prev.order {
		if _, ok := replaced[b.VUID]; !ok {
			next = append(next, b)
		}
	}
	next = append(next, incoming...)

	if s.persist != nil {
		if err := s.persist.SaveBooks(ctx, t); err != nil {
			s.log.Error("Persisting vocabulary tables failed", "books", t.BookVUIDs(), "error", err)
			return nil, apperr.Wrap(apperr.CodePersistence, op, err)
		}
	}

	snap := newSnapshot(next, s.common, s.bad)
	s.current.Store(snap)
	s.log.Info("Vocabulary tables replaced", "books", t.BookVUIDs(), "total_books", len(next))
	return snap, nil
}

// assignOrdinals keeps the position of books already known and appends new
// ones after the current last book.
func assignOrdinals(prev *Snapshot, t ecosystem.Tables) ecosystem.Tables {
	next := prev.nextOrdinal
	rows := make([]ecosystem.BookRow, len(t.Books))
	for i, r := range t.Books {
		if existing, ok := prev.books[r.VUID]; ok {
			r.Ordinal = existing.Ordinal
		} else {
			r.Ordinal = next
			next++
		}
		rows[i] = r
	}
	t.Books = rows
	return t
}
