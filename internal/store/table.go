package store

// table は挿入順を保持するIDキーのレコード集合。
type table[T any] struct {
	order []string
	rows  map[string]*T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) get(id string) (*T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) insert(id string, row *T) {
	t.order = append(t.order, id)
	t.rows[id] = row
}

// deleteAll は指定IDのレコードをまとめて削除する。存在しないIDは無視する。
func (t *table[T]) deleteAll(ids map[string]struct{}) {
	if len(ids) == 0 {
		return
	}
	kept := make([]string, 0, len(t.order))
	for _, id := range t.order {
		if _, ok := ids[id]; ok {
			delete(t.rows, id)
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
}

func (t *table[T]) each(fn func(row *T)) {
	for _, id := range t.order {
		fn(t.rows[id])
	}
}

func (t *table[T]) len() int {
	return len(t.order)
}

// fkIndex は外部キーの値から参照元レコードIDの一覧（挿入順）への対応。
type fkIndex map[string][]string

func (x fkIndex) add(key, id string) {
	x[key] = append(x[key], id)
}

func (x fkIndex) remove(key, id string) {
	ids := x[key]
	for i, v := range ids {
		if v != id {
			continue
		}
		if len(ids) == 1 {
			delete(x, key)
			return
		}
		next := make([]string, 0, len(ids)-1)
		next = append(next, ids[:i]...)
		next = append(next, ids[i+1:]...)
		x[key] = next
		return
	}
}

func (x fkIndex) lookup(key string) []string {
	return x[key]
}
