package domain

import (
	"errors"
	"fmt"
	"time"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrDuplicate     = errors.New("recurso duplicado")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrForbidden     = errors.New("acceso denegado")
	ErrCategoryInUse = errors.New("la categoría tiene artículos asociados")
	ErrInvalidRange  = errors.New("rango de fechas inválido")
	ErrPersistence   = errors.New("error de persistencia")
)

// CategoryInUseError indica que una categoría no se puede eliminar porque la referencian artículos.
type CategoryInUseError struct {
	Category string
	Articles int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("categoría %q: %d artículo(s) asociado(s)", e.Category, e.Articles)
}

// Is permite errors.Is(err, ErrCategoryInUse).
func (e *CategoryInUseError) Is(target error) bool { return target == ErrCategoryInUse }

// InvalidRangeError se devuelve cuando el inicio de un reporte es posterior a su fin.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("inicio %s posterior a fin %s",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// Is permite errors.Is(err, ErrInvalidRange).
func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidRange }

// PersistenceError envuelve un fallo del almacenamiento (conexión, constraint, commit).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrPersistence).
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Persistence clasifica err como fallo de almacenamiento salvo que ya sea un error de dominio
// conocido, que se devuelve sin cambios para que el llamador lo distinga.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsDomainError reporta si err pertenece a la taxonomía de dominio.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidInput, ErrDuplicate, ErrUnauthorized, ErrForbidden,
		ErrCategoryInUse, ErrInvalidRange, ErrPersistence,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
