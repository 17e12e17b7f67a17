// Package lock предоставляет взаимоисключающие блокировки по ключу (например, по ID лота),
// чтобы два конкурирующих запроса не могли одновременно выбрать разных победителей лота.
package lock

import (
	"context"
	"fmt"
	"sync"
)

// Locker выдает эксклюзивную блокировку по ключу. Возвращенная функция освобождает блокировку.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Local - блокировки внутри одного процесса.
type Local struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewLocal создает Local.
func NewLocal() *Local {
	return &Local{locks: make(map[string]*entry)}
}

// Lock ждет освобождения ключа или отмены контекста.
func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

func (l *Local) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
