// Package transaction demarcates atomic read/write boundaries around
// data-access calls. A scope opened while another scope of the same manager
// is active in the context joins the outer one.
package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/patric-chuzhbe/userstore/internal/db/orm"
	"github.com/patric-chuzhbe/userstore/internal/logger"
)

// ErrReadOnlyTransaction is returned when a read-write scope is requested
// inside an active read-only one.
var ErrReadOnlyTransaction = errors.New("read-write scope requested inside a read-only transaction")

// Manager opens transactions on one session factory.
type Manager struct {
	factory *orm.SessionFactory
}

type scope struct {
	id       string
	readOnly bool
}

type scopeKey struct {
	manager *Manager
}

// New returns a transaction manager bound to factory.
func New(factory *orm.SessionFactory) *Manager {
	return &Manager{factory: factory}
}

// SessionFactory returns the session factory the manager is bound to.
func (m *Manager) SessionFactory() *orm.SessionFactory {
	return m.factory
}

// InTransaction reports whether ctx carries an active scope of m, and whether
// that scope is read-only.
func (m *Manager) InTransaction(ctx context.Context) (active bool, readOnly bool) {
	current, ok := ctx.Value(scopeKey{manager: m}).(*scope)
	if !ok {
		return false, false
	}

	return true, current.readOnly
}

// ReadOnly runs fn in a read-only scope. The driver is asked for a read-only
// transaction and the scope always ends with a rollback, so nothing fn writes
// is ever persisted.
func (m *Manager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.execute(ctx, true, fn)
}

// ReadWrite runs fn in a read-write scope, committed when fn returns nil and
// rolled back otherwise. The error from fn is returned unchanged.
func (m *Manager) ReadWrite(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.execute(ctx, false, fn)
}

func (m *Manager) execute(
	ctx context.Context,
	readOnly bool,
	fn func(ctx context.Context) error,
) (err error) {
	if current, ok := ctx.Value(scopeKey{manager: m}).(*scope); ok {
		if current.readOnly && !readOnly {
			return ErrReadOnlyTransaction
		}
		return fn(ctx)
	}

	session, err := m.factory.Begin(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	current := &scope{
		id:       uuid.NewString(),
		readOnly: readOnly,
	}
	txCtx := context.WithValue(m.factory.BindSession(ctx, session), scopeKey{manager: m}, current)

	logger.Log.Debugw("transaction begin", "tx", current.id, "read_only", readOnly)

	defer func() {
		if r := recover(); r != nil {
			m.rollback(session, current)
			panic(r)
		}
	}()

	if err := fn(txCtx); err != nil {
		m.rollback(session, current)
		return err
	}

	if readOnly {
		if err := session.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
			return fmt.Errorf("failed to end read-only transaction: %w", err)
		}
		logger.Log.Debugw("transaction end", "tx", current.id, "read_only", true)
		return nil
	}

	if err := session.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	logger.Log.Debugw("transaction commit", "tx", current.id)

	return nil
}

func (m *Manager) rollback(session *gorm.DB, current *scope) {
	if err := session.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Log.Errorw("transaction rollback failed", "tx", current.id, "error", err)
		return
	}
	logger.Log.Debugw("transaction rollback", "tx", current.id)
}
