// Package collection содержит общую для memory- и file-хранилищ логику
// работы с упорядоченным набором записей: поиск по ID, выдачу новых ID,
// замену и удаление.
package collection

// Accessor описывает, как достать и назначить ID записи и как её скопировать.
type Accessor[T any] struct {
	ID    func(T) int64
	SetID func(T, int64) T
	// Clone делает глубокую копию записи; nil означает, что копирования по значению достаточно.
	Clone func(T) T
}

func (a Accessor[T]) clone(item T) T {
	if a.Clone == nil {
		return item
	}
	return a.Clone(item)
}

// Records — записи в порядке добавления. Новый ID на единицу больше максимума
// из существующих ID и всех ранее выданных, поэтому ID удалённых записей
// повторно не выдаются. Не потокобезопасен.
type Records[T any] struct {
	acc    Accessor[T]
	items  []T
	lastID int64
}

// New оборачивает items, сохраняя их порядок.
func New[T any](acc Accessor[T], items []T) *Records[T] {
	r := &Records[T]{acc: acc, items: make([]T, 0, len(items))}
	for _, item := range items {
		r.items = append(r.items, acc.clone(item))
		if id := acc.ID(item); id > r.lastID {
			r.lastID = id
		}
	}
	return r
}

// Len возвращает количество записей.
func (r *Records[T]) Len() int { return len(r.items) }

// LastID возвращает наибольший когда-либо выданный или увиденный ID.
func (r *Records[T]) LastID() int64 { return r.lastID }

// Observe поднимает счётчик ID до lastID, если он больше текущего.
func (r *Records[T]) Observe(lastID int64) {
	if lastID > r.lastID {
		r.lastID = lastID
	}
}

// All возвращает копии всех записей.
func (r *Records[T]) All() []T {
	out := make([]T, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, r.acc.clone(item))
	}
	return out
}

// Get возвращает копию записи с данным ID.
func (r *Records[T]) Get(id int64) (T, bool) {
	idx := r.indexOf(id)
	if idx < 0 {
		var zero T
		return zero, false
	}
	return r.acc.clone(r.items[idx]), true
}

// Insert назначает записи новый ID, добавляет её в конец и возвращает копию.
func (r *Records[T]) Insert(item T) T {
	r.lastID++
	item = r.acc.SetID(r.acc.clone(item), r.lastID)
	r.items = append(r.items, item)
	return r.acc.clone(item)
}

// Replace заменяет запись с тем же ID на месте. false, если такой записи нет.
func (r *Records[T]) Replace(item T) bool {
	idx := r.indexOf(r.acc.ID(item))
	if idx < 0 {
		return false
	}
	r.items[idx] = r.acc.clone(item)
	return true
}

// Remove удаляет запись. false, если такой записи нет.
func (r *Records[T]) Remove(id int64) bool {
	idx := r.indexOf(id)
	if idx < 0 {
		return false
	}
	r.items = append(r.items[:idx], r.items[idx+1:]...)
	return true
}

func (r *Records[T]) indexOf(id int64) int {
	for i, item := range r.items {
		if r.acc.ID(item) == id {
			return i
		}
	}
	return -1
}
