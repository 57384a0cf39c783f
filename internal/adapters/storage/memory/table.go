package memory

import (
	"errors"
	"sort"
	"sync"

	"pet-admin-api/internal/domain/audit"
	"pet-admin-api/internal/ports/storage"
)

var (
	ErrNotFound = storage.ErrNotFound
	ErrConflict = storage.ErrConflict
)

var errIDAssigned = errors.New("entity already has an id")

// auditedTable guarda filas con audit.Envelope. Los ids los asigna la tabla
// (secuencia desde 1) y las lecturas solo devuelven filas vivas.
type auditedTable[T any] struct {
	mu    sync.RWMutex
	seq   int64
	rows  map[int64]T
	id    func(T) int64
	setID func(*T, int64)
	env   func(T) audit.Envelope
	// clone copia lo que tenga referencias (slices); nil si T es plano.
	clone func(T) T
	// duplicate reemplaza un índice único: true si v choca con otra fila viva.
	duplicate func(existing, v T) bool
}

func newAuditedTable[T any](id func(T) int64, setID func(*T, int64), env func(T) audit.Envelope) *auditedTable[T] {
	return &auditedTable[T]{
		rows:  make(map[int64]T),
		id:    id,
		setID: setID,
		env:   env,
	}
}

func (t *auditedTable[T]) copyOf(v T) T {
	if t.clone == nil {
		return v
	}
	return t.clone(v)
}

// clashes se llama con el lock tomado.
func (t *auditedTable[T]) clashes(v T) bool {
	if t.duplicate == nil || t.env(v).IsDeleted() {
		return false
	}
	for id, cur := range t.rows {
		if id != t.id(v) && !t.env(cur).IsDeleted() && t.duplicate(cur, v) {
			return true
		}
	}
	return false
}

func (t *auditedTable[T]) insert(v T) (int64, error) {
	if t.id(v) != 0 {
		return 0, errIDAssigned
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.clashes(v) {
		return 0, ErrConflict
	}
	t.seq++
	v = t.copyOf(v)
	t.setID(&v, t.seq)
	t.rows[t.seq] = v
	return t.seq, nil
}

func (t *auditedTable[T]) get(id int64) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.rows[id]
	if !ok || t.env(v).IsDeleted() {
		var zero T
		return zero, ErrNotFound
	}
	return t.copyOf(v), nil
}

// find devuelve la primera fila viva que cumple match (orden por id).
func (t *auditedTable[T]) find(match func(T) bool) (T, error) {
	for _, v := range t.list() {
		if match(v) {
			return v, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

func (t *auditedTable[T]) list() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.rows))
	for _, v := range t.rows {
		if !t.env(v).IsDeleted() {
			out = append(out, t.copyOf(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return t.id(out[i]) < t.id(out[j]) })
	return out
}

// update reemplaza la fila solo si sigue viva y con expectedVersion.
// Igual que en postgres, una fila que ya no existe también es conflicto.
func (t *auditedTable[T]) update(v T, expectedVersion int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.rows[t.id(v)]
	if !ok {
		return ErrConflict
	}
	env := t.env(cur)
	if env.IsDeleted() || env.Version != expectedVersion || t.clashes(v) {
		return ErrConflict
	}
	t.rows[t.id(v)] = t.copyOf(v)
	return nil
}

// remove borra físicamente, viva o no.
func (t *auditedTable[T]) remove(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	delete(t.rows, id)
	return nil
}
