package weights

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/yungbote/response-validator/internal/platform/apperr"
	"github.com/yungbote/response-validator/internal/platform/logger"
)

// GlobalScope is the default-pointer scope that applies to every book.
const GlobalScope = "global"

const notFoundMessage = "Feature weight id not found"

type SetRecord struct {
	ID      string
	Hash    string
	Weights Weights
}

// DefaultRecord points a scope (GlobalScope or a book vuid) at a set.
type DefaultRecord struct {
	Scope string
	ID    string
}

// Change is one registry mutation. Persisters apply it atomically.
type Change struct {
	Sets     []SetRecord
	Defaults []DefaultRecord
}

type Persister interface {
	SaveRegistry(ctx context.Context, c Change) error
}

// BookLookup reports whether a book has been imported.
type BookLookup interface {
	HasBook(vuid string) bool
}

type registry struct {
	sets   map[string]SetRecord
	byHash map[string]string
	order  []string
	global string
	books  map[string]string
}

func (r *registry) clone() *registry {
	next := &registry{
		sets:   make(map[string]SetRecord, len(r.sets)+1),
		byHash: make(map[string]string, len(r.byHash)+1),
		order:  append([]string(nil), r.order...),
		global: r.global,
		books:  make(map[string]string, len(r.books)),
	}
	for k, v := range r.sets {
		next.sets[k] = v
	}
	for k, v := range r.byHash {
		next.byHash[k] = v
	}
	for k, v := range r.books {
		next.books[k] = v
	}
	return next
}

func (r *registry) add(rec SetRecord) {
	r.sets[rec.ID] = rec
	r.byHash[rec.Hash] = rec.ID
	r.order = append(r.order, rec.ID)
}

// Store is the content-addressed feature weight registry. Reads use the
// last published registry; writers serialize on mu and publish only after
// the persister accepts the change.
type Store struct {
	log     *logger.Logger
	persist Persister
	books   BookLookup

	mu      sync.Mutex
	current atomic.Pointer[registry]
}

func NewStore(log *logger.Logger, persist Persister, books BookLookup) *Store {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{log: log.With("service", "FeatureWeightStore"), persist: persist, books: books}
	s.current.Store(&registry{sets: map[string]SetRecord{}, byHash: map[string]string{}, books: map[string]string{}})
	return s
}

// Load replaces the registry with persisted records without writing back.
// Defaults that point at unknown sets are dropped.
func (s *Store) Load(sets []SetRecord, defaults []DefaultRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &registry{sets: map[string]SetRecord{}, byHash: map[string]string{}, books: map[string]string{}}
	for _, rec := range sets {
		if rec.Hash == "" {
			rec.Hash = rec.Weights.Hash()
		}
		if _, dup := r.byHash[rec.Hash]; dup {
			s.log.Warn("Skipping duplicate feature weight set", "feature_weights_id", rec.ID)
			continue
		}
		r.add(rec)
	}
	for _, d := range defaults {
		if _, ok := r.sets[d.ID]; !ok {
			s.log.Warn("Dropping default that points at a missing set", "scope", d.Scope, "feature_weights_id", d.ID)
			continue
		}
		if d.Scope == GlobalScope {
			r.global = d.ID
		} else {
			r.books[d.Scope] = d.ID
		}
	}
	s.current.Store(r)
	s.log.Info("Feature weight registry loaded", "sets", len(r.sets), "book_defaults", len(r.books))
}

// Bootstrap makes sure a global default exists, storing w under id when
// the registry has no equal set yet.
func (s *Store) Bootstrap(ctx context.Context, id string, w Weights) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.current.Load()
	if cur.global != "" {
		return nil
	}
	next := cur.clone()
	var change Change
	hash := w.Hash()
	existing, ok := next.byHash[hash]
	if !ok {
		if id == "" {
			id = uuid.New().String()
		}
		if _, taken := next.sets[id]; taken {
			id = uuid.New().String()
		}
		rec := SetRecord{ID: id, Hash: hash, Weights: w}
		next.add(rec)
		change.Sets = append(change.Sets, rec)
		existing = id
	}
	next.global = existing
	change.Defaults = append(change.Defaults, DefaultRecord{Scope: GlobalScope, ID: existing})
	if err := s.save(ctx, "weights.Bootstrap", change); err != nil {
		return err
	}
	s.current.Store(next)
	s.log.Info("Seeded default feature weights", "feature_weights_id", existing)
	return nil
}

// Store registers m and returns its id. Structurally equal sets share one
// id; created reports whether a new entry was written.
func (s *Store) Store(ctx context.Context, m map[string]float64) (string, bool, error) {
	w, err := ParseWeights(m)
	if err != nil {
		return "", false, err
	}
	return s.StoreWeights(ctx, w)
}

func (s *Store) StoreWeights(ctx context.Context, w Weights) (string, bool, error) {
	hash := w.Hash()
	if id, ok := s.current.Load().byHash[hash]; ok {
		return id, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.current.Load()
	if id, ok := cur.byHash[hash]; ok {
		return id, false, nil
	}
	rec := SetRecord{ID: uuid.New().String(), Hash: hash, Weights: w}
	if err := s.save(ctx, "weights.Store", Change{Sets: []SetRecord{rec}}); err != nil {
		return "", false, err
	}
	next := cur.clone()
	next.add(rec)
	s.current.Store(next)
	s.log.Info("Stored feature weights", "feature_weights_id", rec.ID)
	return rec.ID, true, nil
}

func (s *Store) Get(id string) (Weights, error) {
	rec, ok := s.current.Load().sets[id]
	if !ok {
		return Weights{}, apperr.New(apperr.CodeNotFound, "weights.Get", notFoundMessage, nil)
	}
	return rec.Weights, nil
}

// List returns every set in insertion order.
func (s *Store) List() []SetRecord {
	r := s.current.Load()
	out := make([]SetRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sets[id])
	}
	return out
}

func (s *Store) Len() int { return len(s.current.Load().sets) }

func (s *Store) GlobalDefault() string { return s.current.Load().global }

// BookDefault returns the override for a book, "" when it follows the
// global default.
func (s *Store) BookDefault(bookVUID string) string {
	return s.current.Load().books[bookVUID]
}

// BookDefaults lists every per-book override sorted by book.
func (s *Store) BookDefaults() []DefaultRecord {
	r := s.current.Load()
	out := make([]DefaultRecord, 0, len(r.books))
	for scope, id := range r.books {
		out = append(out, DefaultRecord{Scope: scope, ID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Scope < out[j].Scope })
	return out
}

func (s *Store) SetGlobalDefault(ctx context.Context, id string) error {
	const op = "weights.SetGlobalDefault"
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.current.Load()
	if _, ok := cur.sets[id]; !ok {
		return apperr.New(apperr.CodeNotFound, op, notFoundMessage, nil)
	}
	if cur.global == id {
		return nil
	}
	if err := s.save(ctx, op, Change{Defaults: []DefaultRecord{{Scope: GlobalScope, ID: id}}}); err != nil {
		return err
	}
	next := cur.clone()
	next.global = id
	s.current.Store(next)
	s.log.Info("Global feature weights changed", "feature_weights_id", id)
	return nil
}

func (s *Store) SetBookDefault(ctx context.Context, bookVUID, id string) error {
	const op = "weights.SetBookDefault"
	if s.books == nil || !s.books.HasBook(bookVUID) {
		return apperr.New(apperr.CodeInvalidBook, op, "Invalid book vuid.", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.current.Load()
	if _, ok := cur.sets[id]; !ok {
		return apperr.New(apperr.CodeNotFound, op, notFoundMessage, nil)
	}
	if cur.books[bookVUID] == id {
		return nil
	}
	if err := s.save(ctx, op, Change{Defaults: []DefaultRecord{{Scope: bookVUID, ID: id}}}); err != nil {
		return err
	}
	next := cur.clone()
	next.books[bookVUID] = id
	s.current.Store(next)
	s.log.Info("Book feature weights changed", "book_vuid", bookVUID, "feature_weights_id", id)
	return nil
}

// Resolve picks the effective set: explicit override, then the book
// override, then the global default.
func (s *Store) Resolve(override, bookVUID string) (string, Weights, error) {
	const op = "weights.Resolve"
	r := s.current.Load()
	id := override
	if id == "" && bookVUID != "" {
		id = r.books[bookVUID]
	}
	if id == "" {
		id = r.global
	}
	if id == "" {
		return "", Weights{}, apperr.New(apperr.CodeNotFound, op, "no default feature weights configured", nil)
	}
	rec, ok := r.sets[id]
	if !ok {
		return "", Weights{}, apperr.New(apperr.CodeNotFound, op, notFoundMessage, nil)
	}
	return id, rec.Weights, nil
}

func (s *Store) save(ctx context.Context, op string, c Change) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist.SaveRegistry(ctx, c); err != nil {
		s.log.Error("Persisting feature weights failed", "op", op, "error", err)
		return apperr.Wrap(apperr.CodePersistence, op, err)
	}
	return nil
}
