// internal/service/locker.go
package service

import (
	"sync"

	"github.com/google/uuid"
)

// LearnerLocker は学習者単位の排他ロックを提供します。
// 同一学習者の状態変更 (カード更新・セッション遷移・戦略更新) は
// このロックで直列化し、学習者間は並行に処理できます。
// バックグラウンドジョブも同じロックを取得することで、進行中の
// セッションと競合しないようにします。
type LearnerLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewLearnerLocker() *LearnerLocker {
	return &LearnerLocker{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Lock は学習者のロックを取得します。ロック自体は解放後も保持され
// 続けますが、学習者数は有限なのでメモリ上の問題にはなりません。
func (l *LearnerLocker) Lock(learnerID uuid.UUID) {
	l.get(learnerID).Lock()
}

func (l *LearnerLocker) Unlock(learnerID uuid.UUID) {
	l.get(learnerID).Unlock()
}

func (l *LearnerLocker) get(learnerID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[learnerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[learnerID] = m
	}
	return m
}
