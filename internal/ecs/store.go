package ecs

// Store is the contract shared by DenseStore and SparseStore.
type Store[T any] interface {
	Insert(e Entity, v T) error
	Remove(e Entity) bool
	Get(e Entity) (T, bool)
	GetMut(e Entity) (*T, bool)
	Has(e Entity) bool
	Len() int
	Each(fn func(Entity, *T))
	Clear()
}

// Remover is the part of a store the world needs when despawning.
type Remover interface {
	Remove(e Entity) bool
	Clear()
}

var (
	_ Store[struct{}] = (*DenseStore[struct{}])(nil)
	_ Store[struct{}] = (*SparseStore[struct{}])(nil)
)

// DenseStore keeps one entry per entity slot. Index, insert and remove are
// O(1); iteration follows slot order.
//
// Pointers returned by GetMut and Each stay valid until the next Insert,
// which may grow the backing array.
type DenseStore[T any] struct {
	entities Liveness
	owners   []Entity
	values   []T
	count    int
}

func NewDenseStore[T any](entities Liveness, capacity int) *DenseStore[T] {
	return &DenseStore[T]{
		entities: entities,
		owners:   make([]Entity, 0, capacity),
		values:   make([]T, 0, capacity),
	}
}

func (s *DenseStore[T]) grow(idx int) {
	if idx < len(s.owners) {
		return
	}
	n := idx + 1
	if c := cap(s.owners); n <= c {
		s.owners = s.owners[:n]
		s.values = s.values[:n]
		return
	}
	owners := make([]Entity, n, 2*n)
	copy(owners, s.owners)
	values := make([]T, n, 2*n)
	copy(values, s.values)
	s.owners, s.values = owners, values
}

// Insert sets e's component, overwriting any previous value. Whatever a
// previous occupant of the slot left behind is discarded.
func (s *DenseStore[T]) Insert(e Entity, v T) error {
	if !s.entities.IsAlive(e) {
		return &EntityError{Entity: e, Wrapped: ErrStaleEntity}
	}
	idx := int(e.Index)
	s.grow(idx)
	if s.owners[idx].IsNil() {
		s.count++
	}
	s.owners[idx] = e
	s.values[idx] = v
	return nil
}

func (s *DenseStore[T]) slot(e Entity) (int, bool) {
	idx := int(e.Index)
	if idx == 0 || idx >= len(s.owners) || s.owners[idx] != e {
		return 0, false
	}
	if !s.entities.IsAlive(e) {
		return 0, false
	}
	return idx, true
}

func (s *DenseStore[T]) Remove(e Entity) bool {
	idx := int(e.Index)
	if idx == 0 || idx >= len(s.owners) || s.owners[idx] != e {
		return false
	}
	var zero T
	s.owners[idx] = Nil
	s.values[idx] = zero
	s.count--
	return true
}

func (s *DenseStore[T]) Get(e Entity) (T, bool) {
	idx, ok := s.slot(e)
	if !ok {
		var zero T
		return zero, false
	}
	return s.values[idx], true
}

func (s *DenseStore[T]) GetMut(e Entity) (*T, bool) {
	idx, ok := s.slot(e)
	if !ok {
		return nil, false
	}
	return &s.values[idx], true
}

func (s *DenseStore[T]) Has(e Entity) bool {
	_, ok := s.slot(e)
	return ok
}

// Len counts occupied slots, including any left by entities destroyed
// without going through Remove.
func (s *DenseStore[T]) Len() int { return s.count }

func (s *DenseStore[T]) Each(fn func(Entity, *T)) {
	for i := 1; i < len(s.owners); i++ {
		e := s.owners[i]
		if e.IsNil() || !s.entities.IsAlive(e) {
			continue
		}
		fn(e, &s.values[i])
	}
}

func (s *DenseStore[T]) Clear() {
	clear(s.owners)
	clear(s.values)
	s.owners = s.owners[:0]
	s.values = s.values[:0]
	s.count = 0
}

// SparseStore maps full identities to values. Operations are O(1) average;
// iteration yields occupied entries in insertion order, disturbed by
// swap-removal.
type SparseStore[T any] struct {
	entities Liveness
	index    map[Entity]int
	keys     []Entity
	values   []T
}

func NewSparseStore[T any](entities Liveness) *SparseStore[T] {
	return &SparseStore[T]{
		entities: entities,
		index:    make(map[Entity]int),
	}
}

func (s *SparseStore[T]) Insert(e Entity, v T) error {
	if !s.entities.IsAlive(e) {
		return &EntityError{Entity: e, Wrapped: ErrStaleEntity}
	}
	if i, ok := s.index[e]; ok {
		s.values[i] = v
		return nil
	}
	s.index[e] = len(s.keys)
	s.keys = append(s.keys, e)
	s.values = append(s.values, v)
	return nil
}

func (s *SparseStore[T]) Remove(e Entity) bool {
	i, ok := s.index[e]
	if !ok {
		return false
	}
	last := len(s.keys) - 1
	if i != last {
		s.keys[i] = s.keys[last]
		s.values[i] = s.values[last]
		s.index[s.keys[i]] = i
	}
	var zero T
	s.values[last] = zero
	s.keys = s.keys[:last]
	s.values = s.values[:last]
	delete(s.index, e)
	return true
}

func (s *SparseStore[T]) lookup(e Entity) (int, bool) {
	i, ok := s.index[e]
	if !ok || !s.entities.IsAlive(e) {
		return 0, false
	}
	return i, true
}

func (s *SparseStore[T]) Get(e Entity) (T, bool) {
	i, ok := s.lookup(e)
	if !ok {
		var zero T
		return zero, false
	}
	return s.values[i], true
}

func (s *SparseStore[T]) GetMut(e Entity) (*T, bool) {
	i, ok := s.lookup(e)
	if !ok {
		return nil, false
	}
	return &s.values[i], true
}

func (s *SparseStore[T]) Has(e Entity) bool {
	_, ok := s.lookup(e)
	return ok
}

func (s *SparseStore[T]) Len() int { return len(s.keys) }

func (s *SparseStore[T]) Each(fn func(Entity, *T)) {
	for i, e := range s.keys {
		if !s.entities.IsAlive(e) {
			continue
		}
		fn(e, &s.values[i])
	}
}

func (s *SparseStore[T]) Clear() {
	clear(s.index)
	s.keys = s.keys[:0]
	clear(s.values)
	s.values = s.values[:0]
}

// Lookup fetches e's component from st, reporting why it failed.
func Lookup[T any](entities Liveness, st Store[T], e Entity) (T, error) {
	v, ok := st.Get(e)
	if ok {
		return v, nil
	}
	if !entities.IsAlive(e) {
		return v, &EntityError{Entity: e, Wrapped: errStaleLookup}
	}
	return v, &EntityError{Entity: e, Wrapped: ErrNotFound}
}
