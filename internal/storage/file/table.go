// Package file хранит коллекцию записей в одном JSON-файле: каждая операция
// читает файл целиком, а изменяющая операция целиком его перезаписывает.
// Наибольший выданный ID лежит рядом в файле <path>.seq, поэтому ID
// удалённых записей не выдаются повторно и после перезапуска.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vladislavdragonenkov/shoplab/internal/storage/collection"
)

// Table — файловое хранилище записей одного типа.
type Table[T any] struct {
	mu       sync.Mutex
	path     string
	acc      collection.Accessor[T]
	notFound error
	lastID   int64
}

// sequence — содержимое файла <path>.seq.
type sequence struct {
	LastID int64 `json:"last_id"`
}

// Open открывает файл path. Если файла нет, он создаётся с записями seed.
func Open[T any](path string, acc collection.Accessor[T], notFound error, seed []T) (*Table[T], error) {
	t := &Table[T]{path: path, acc: acc, notFound: notFound}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if seed == nil {
			seed = []T{}
		}
		if err := t.write(collection.New(acc, seed)); err != nil {
			return nil, fmt.Errorf("seed %s: %w", path, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	recs, err := t.read()
	if err != nil {
		return nil, err
	}
	seq, err := t.readSequence()
	if err != nil {
		return nil, err
	}
	t.lastID = max(recs.LastID(), seq)
	return t, nil
}

// Path возвращает путь к файлу.
func (t *Table[T]) Path() string { return t.path }

func (t *Table[T]) sequencePath() string { return t.path + ".seq" }

// Ping проверяет, что файл читается и разбирается.
func (t *Table[T]) Ping(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.read()
	return err
}

func (t *Table[T]) List(_ context.Context) ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	recs, err := t.read()
	if err != nil {
		return nil, err
	}
	return recs.All(), nil
}

func (t *Table[T]) Get(_ context.Context, id int64) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	recs, err := t.read()
	if err != nil {
		return zero, err
	}
	item, ok := recs.Get(id)
	if !ok {
		return zero, t.notFound
	}
	return item, nil
}

func (t *Table[T]) Create(_ context.Context, item T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	recs, err := t.read()
	if err != nil {
		return zero, err
	}
	seq, err := t.readSequence()
	if err != nil {
		return zero, err
	}
	recs.Observe(max(t.lastID, seq))
	created := recs.Insert(item)

	// Счётчик пишется раньше данных: при сбое между записями теряется ID, а не уникальность.
	if err := t.writeSequence(recs.LastID()); err != nil {
		return zero, err
	}
	if err := t.write(recs); err != nil {
		return zero, err
	}
	t.lastID = recs.LastID()
	return created, nil
}

func (t *Table[T]) Save(_ context.Context, item T) error {
	return t.mutate(func(recs *collection.Records[T]) bool {
		return recs.Replace(item)
	})
}

func (t *Table[T]) Delete(_ context.Context, id int64) error {
	return t.mutate(func(recs *collection.Records[T]) bool {
		return recs.Remove(id)
	})
}

func (t *Table[T]) mutate(fn func(*collection.Records[T]) bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	recs, err := t.read()
	if err != nil {
		return err
	}
	if !fn(recs) {
		return t.notFound
	}
	return t.write(recs)
}

func (t *Table[T]) read() (*collection.Records[T], error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.path, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t.path, err)
	}
	return collection.New(t.acc, items), nil
}

// readSequence возвращает сохранённый счётчик ID; нет файла — ноль.
func (t *Table[T]) readSequence() (int64, error) {
	data, err := os.ReadFile(t.sequencePath())
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", t.sequencePath(), err)
	}

	var seq sequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return 0, fmt.Errorf("decode %s: %w", t.sequencePath(), err)
	}
	return seq.LastID, nil
}

func (t *Table[T]) writeSequence(lastID int64) error {
	data, err := json.Marshal(sequence{LastID: lastID})
	if err != nil {
		return fmt.Errorf("encode %s: %w", t.sequencePath(), err)
	}
	return replaceFile(t.sequencePath(), data)
}

func (t *Table[T]) write(recs *collection.Records[T]) error {
	data, err := json.Marshal(recs.All())
	if err != nil {
		return fmt.Errorf("encode %s: %w", t.path, err)
	}
	return replaceFile(t.path, data)
}

// replaceFile атомарно заменяет файл: пишет во временный файл рядом и переименовывает.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
