// internal/clock/clock.go
package clock

import "time"

// Clock は現在時刻の供給源です。スケジューリング計算を決定的に
// テストできるよう、time.Now() を直接呼ばずに必ず注入します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Real は実時間を返す Clock を返します
func Real() Clock {
	return realClock{}
}

// Fixed は常に同じ時刻を返す Clock です (テスト用)
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time {
	return f.T
}

// Advance は固定時刻を進めます
func (f *Fixed) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}
