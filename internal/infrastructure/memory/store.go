package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// state es una foto completa de los datos; las transacciones trabajan sobre una copia.
type state struct {
	categories     map[string]entity.Category
	articles       map[int64]entity.Article
	movements      map[int64]entity.Movement
	nextArticleID  int64
	nextMovementID int64
}

func newState() *state {
	return &state{
		categories: make(map[string]entity.Category),
		articles:   make(map[int64]entity.Article),
		movements:  make(map[int64]entity.Movement),
	}
}

func (s *state) clone() *state {
	return &state{
		categories:     maps.Clone(s.categories),
		articles:       maps.Clone(s.articles),
		movements:      maps.Clone(s.movements),
		nextArticleID:  s.nextArticleID,
		nextMovementID: s.nextMovementID,
	}
}

// Store almacenamiento en memoria con el mismo contrato transaccional que PostgreSQL y SQLite.
// Los escritores se serializan con writeMu; los lectores ven siempre una foto confirmada.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	state   *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// handle da acceso al estado: directo (tx == nil) o a la copia de una transacción.
type handle struct {
	store *Store
	tx    *state
}

func (h handle) read(fn func(*state)) {
	if h.tx != nil {
		fn(h.tx)
		return
	}
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()
	fn(h.store.state)
}

// write fuera de una transacción aplica la operación sobre una copia y la publica si no hay error.
func (h handle) write(fn func(*state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.store.writeMu.Lock()
	defer h.store.writeMu.Unlock()
	next := h.store.snapshot()
	if err := fn(next); err != nil {
		return err
	}
	h.store.publish(next)
	return nil
}

func (s *Store) snapshot() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Store) publish(next *state) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

// CategoryRepository devuelve el repositorio de categorías fuera de transacción.
func (s *Store) CategoryRepository() *CategoryRepo { return &CategoryRepo{handle{store: s}} }

// ArticleRepository devuelve el repositorio de artículos fuera de transacción.
func (s *Store) ArticleRepository() *ArticleRepo { return &ArticleRepo{handle{store: s}} }

// MovementRepository devuelve el repositorio de movimientos fuera de transacción.
func (s *Store) MovementRepository() *MovementRepo { return &MovementRepo{handle{store: s}} }

// TxRunner ejecuta callbacks sobre una copia del estado y la publica solo si fn no falla.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner del almacén.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run equivale a Begin/Commit: la copia se descarta ante cualquier error o cancelación.
func (r *TxRunner) Run(ctx context.Context, fn func(
	categoryRepo repository.CategoryRepository,
	articleRepo repository.ArticleRepository,
	movementRepo repository.MovementRepository,
) error) error {
	r.store.writeMu.Lock()
	defer r.store.writeMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := r.store.snapshot()
	h := handle{store: r.store, tx: tx}
	if err := fn(&CategoryRepo{h}, &ArticleRepo{h}, &MovementRepo{h}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.publish(tx)
	return nil
}
