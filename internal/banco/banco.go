// Package banco implements the operator flows for gestores and clientes: prompt, validate,
// hash, persist and notify. Validation failures and lookup misses are reported to the operator
// and are not errors; returned errors are infrastructure failures (storage, hashing, input).
package banco

import (
	"banco/internal/console"
	"banco/internal/ports"
	"banco/internal/types"
	"context"
	"errors"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// BulkPassword is the placeholder password given to every randomly generated gestor.
const BulkPassword = "123456"

// Deps are the collaborators shared by Gestores and Clientes.
type Deps struct {
	Prompter *console.Prompter
	Notifier ports.Notifier
	HashCost int
}

// notify is best-effort: a failing notifier never changes the outcome of the write.
func notify(ctx context.Context, n ports.Notifier, ev types.Event) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, ev); err != nil {
		log.WithError(err).WithField("event", ev.Kind).Warn("Notification failed")
	}
}

// targets lists every store a deletion touches: the active one and, when configured and
// different, the database.
func targets[T types.Record[T]](active, database ports.Store[T]) []ports.Store[T] {
	out := []ports.Store[T]{active}
	if database != nil && database != active {
		out = append(out, database)
	}
	return out
}

// deleteByID deletes id from every target. It reports whether any store held the record.
func deleteByID[T types.Record[T]](ctx context.Context, stores []ports.Store[T], id int64) (bool, error) {
	found := false
	for _, st := range stores {
		err := st.DeleteByID(ctx, id)
		switch {
		case err == nil:
			found = true
		case errors.Is(err, types.ErrNotFound):
		default:
			return found, err
		}
	}
	return found, nil
}

func deleteAll[T types.Record[T]](ctx context.Context, stores []ports.Store[T]) error {
	for _, st := range stores {
		if err := st.DeleteAll(ctx); err != nil {
			return err
		}
	}
	return nil
}

// parseCount parses a non-negative count. Anything else is rejected.
func parseCount(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// askPage reads and checks the page number and page size. ok is false when a message was shown.
func askPage(p *console.Prompter) (page, size int, ok bool, err error) {
	pageStr, err := p.Ask("Número de página: ")
	if err != nil {
		return 0, 0, false, err
	}
	sizeStr, err := p.Ask("Número de elementos: ")
	if err != nil {
		return 0, 0, false, err
	}
	page, perr := strconv.Atoi(pageStr)
	if perr != nil || page < 1 {
		p.Println("Número de página incorrecto")
		return 0, 0, false, nil
	}
	size, serr := strconv.Atoi(sizeStr)
	if serr != nil || size < 1 {
		p.Println("Número de elementos incorrecto")
		return 0, 0, false, nil
	}
	return page, size, true, nil
}

// maxBulkAttempts bounds how many random keys are tried for one record before giving up.
const maxBulkAttempts = 5

// insertUnique retries gen until the store accepts a record whose key is not taken yet.
func insertUnique[T types.Record[T]](ctx context.Context, st ports.Store[T], gen func() (T, error)) (T, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		rec, err := gen()
		if err != nil {
			return zero, err
		}
		saved, err := st.Insert(ctx, rec)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, types.ErrDuplicate) || attempt >= maxBulkAttempts {
			return zero, fmt.Errorf("bulk insert: %w", err)
		}
		log.WithField("key", rec.RecordKey()).Debug("Random key taken, retrying")
	}
}
