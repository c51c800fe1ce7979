package store

import (
	"context"
	"sync"
)

type snapshotKey struct{}

// snapshot はリクエスト単位で保持する共有ロック。
// Pinで最初に取得し、releaseまで保持し続ける。
type snapshot struct {
	store    *Store
	mu       sync.Mutex
	held     bool
	released bool
}

// WithSnapshot はctxに読み取りスナップショットを登録する。
// 共有ロックはPinが呼ばれた時点で取得され、戻り値のreleaseで解放される。
// スナップショットを保持している間、Updateは待機する。
// ロック保持中に同じゴルーチンからUpdateを呼ぶとデッドロックするため、
// Pinはミューテーションを含まない読み取り処理の入口でのみ呼ぶこと。
func (s *Store) WithSnapshot(ctx context.Context) (context.Context, func()) {
	sn := &snapshot{store: s}
	return context.WithValue(ctx, snapshotKey{}, sn), sn.release
}

// Pin はctxのスナップショットの共有ロックを取得する。
// 取得済みの場合やctxにスナップショットがない場合は何もしない。
func (s *Store) Pin(ctx context.Context) {
	sn := s.snapshotFrom(ctx)
	if sn == nil {
		return
	}
	sn.mu.Lock()
	defer sn.mu.Unlock()
	if sn.held || sn.released {
		return
	}
	s.mu.RLock()
	sn.held = true
}

// ViewContext はctxのスナップショットが取得済みならその状態でfnを実行する。
// 未取得の場合はViewと同様にfnの間だけ共有ロックを取得する。
func (s *Store) ViewContext(ctx context.Context, fn func(r Reader)) {
	if sn := s.snapshotFrom(ctx); sn != nil && sn.pinned() {
		fn(s.st)
		return
	}
	s.View(fn)
}

func (s *Store) snapshotFrom(ctx context.Context) *snapshot {
	sn, _ := ctx.Value(snapshotKey{}).(*snapshot)
	if sn == nil || sn.store != s {
		return nil
	}
	return sn
}

func (sn *snapshot) pinned() bool {
	sn.mu.Lock()
	defer sn.mu.Unlock()
	return sn.held
}

func (sn *snapshot) release() {
	sn.mu.Lock()
	defer sn.mu.Unlock()
	if sn.released {
		return
	}
	sn.released = true
	if sn.held {
		sn.held = false
		sn.store.mu.RUnlock()
	}
}
