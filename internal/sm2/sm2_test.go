// internal/sm2/sm2_test.go
package sm2

import (
	"testing"
	"time"

	"go_5_srs_engine/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newCard() model.Card {
	return model.Card{
		EaseFactor:   2.5,
		IntervalDays: 0,
		Repetitions:  0,
		Status:       model.CardStatusNew,
	}
}

func TestQuality(t *testing.T) {
	tests := []struct {
		name       string
		assessment model.Assessment
		want       int
		wantErr    bool
	}{
		{"forgot は 0", model.AssessmentForgot, 0, false},
		{"hard は 3", model.AssessmentHard, 3, false},
		{"good は 4", model.AssessmentGood, 4, false},
		{"easy は 5", model.AssessmentEasy, 5, false},
		{"異常系: 不明な評価値", model.Assessment("brilliant"), 0, true},
		{"異常系: 空文字", model.Assessment(""), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Quality(tt.assessment)
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// 仕様のシナリオ: 初期状態 (ease=2.5, interval=0, reps=0, status=new) から
// good -> good -> easy -> forgot を順に適用する
func TestApply_ScenarioSequence(t *testing.T) {
	card := newCard()
	var err error

	// Review 1: good (quality 4)
	card, err = Apply(card, model.AssessmentGood, 1000, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, card.Repetitions)
	assert.Equal(t, 1, card.IntervalDays)
	assert.InDelta(t, 2.5, card.EaseFactor, 1e-9) // 2.5+0.1-1*0.10 = 2.5
	assert.Equal(t, model.CardStatusLearning, card.Status)
	assert.Equal(t, testNow.AddDate(0, 0, 1), card.NextReviewDate)

	// Review 2: good
	card, err = Apply(card, model.AssessmentGood, 1000, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, card.Repetitions)
	assert.Equal(t, 6, card.IntervalDays)
	assert.InDelta(t, 2.5, card.EaseFactor, 1e-9)
	assert.Equal(t, model.CardStatusLearning, card.Status)

	// Review 3: easy (quality 5) — 間隔は更新前の ease で計算: round(6*2.5)=15
	card, err = Apply(card, model.AssessmentEasy, 1000, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, card.Repetitions)
	assert.Equal(t, 15, card.IntervalDays)
	assert.InDelta(t, 2.6, card.EaseFactor, 1e-9)
	assert.Equal(t, model.CardStatusLearning, card.Status) // 15 < 21 なので昇格しない

	// Review 4: forgot (quality 0) — リセット + ease更新は常に適用
	card, err = Apply(card, model.AssessmentForgot, 1000, testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, card.Repetitions)
	assert.Equal(t, 1, card.IntervalDays)
	assert.Equal(t, model.CardStatusLearning, card.Status)
	assert.InDelta(t, 1.8, card.EaseFactor, 1e-9) // 2.6+0.1-5*(0.08+5*0.02) = 1.8
}

func TestApply_FailureResetsGraduatedCard(t *testing.T) {
	card := model.Card{
		EaseFactor:   2.8,
		IntervalDays: 40,
		Repetitions:  7,
		Status:       model.CardStatusGraduated,
	}

	card, err := Apply(card, model.AssessmentForgot, 5000, testNow)
	require.NoError(t, err)

	// 失敗は graduated でも learning に降格させる (仕様上の明示的な選択)
	assert.Equal(t, 0, card.Repetitions)
	assert.Equal(t, 1, card.IntervalDays)
	assert.Equal(t, model.CardStatusLearning, card.Status)
	assert.Equal(t, testNow.AddDate(0, 0, 1), card.NextReviewDate)
}

func TestApply_Graduation(t *testing.T) {
	// learning 状態で interval*ease >= 21 になる復習で graduated へ
	card := model.Card{
		EaseFactor:   2.5,
		IntervalDays: 15,
		Repetitions:  3,
		Status:       model.CardStatusLearning,
	}

	card, err := Apply(card, model.AssessmentGood, 1000, testNow)
	require.NoError(t, err)
	assert.Equal(t, 38, card.IntervalDays) // round(15*2.5)
	assert.Equal(t, model.CardStatusGraduated, card.Status)
}

func TestApply_NewCardCannotGraduateDirectly(t *testing.T) {
	// new からの最初の成功は必ず learning (interval は 1 なので昇格もしない)
	card := newCard()
	card, err := Apply(card, model.AssessmentEasy, 500, testNow)
	require.NoError(t, err)
	assert.Equal(t, model.CardStatusLearning, card.Status)
	assert.Equal(t, 1, card.IntervalDays)
}

// ease factor は任意の復習列に対して 1.3 を下回らない
func TestApply_EaseFactorFloor(t *testing.T) {
	card := newCard()
	sequence := []model.Assessment{
		model.AssessmentForgot, model.AssessmentForgot, model.AssessmentForgot,
		model.AssessmentHard, model.AssessmentForgot, model.AssessmentHard,
		model.AssessmentForgot, model.AssessmentForgot, model.AssessmentForgot,
		model.AssessmentForgot, model.AssessmentForgot, model.AssessmentForgot,
	}

	var err error
	for i, a := range sequence {
		card, err = Apply(card, a, 1000, testNow)
		require.NoError(t, err)
		assert.GreaterOrEqualf(t, card.EaseFactor, MinEaseFactor, "review %d で下限を割った", i+1)
		assert.GreaterOrEqual(t, card.IntervalDays, 1)
	}
	assert.InDelta(t, MinEaseFactor, card.EaseFactor, 1e-9)
}

func TestApply_HardReducesEase(t *testing.T) {
	card := newCard()
	card, err := Apply(card, model.AssessmentHard, 3000, testNow)
	require.NoError(t, err)

	// quality 3: ease' = 2.5 + 0.1 - 2*(0.08+2*0.02) = 2.36
	assert.InDelta(t, 2.36, card.EaseFactor, 1e-9)
	assert.Equal(t, 1, card.Repetitions) // hard は合格扱い
	assert.Equal(t, 1, card.CorrectReviews)
}

func TestApply_Statistics(t *testing.T) {
	card := newCard()
	var err error

	card, err = Apply(card, model.AssessmentGood, 1000, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, card.TotalReviews)
	assert.Equal(t, int64(1000), card.AvgResponseTimeMs)

	card, err = Apply(card, model.AssessmentForgot, 2000, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, card.TotalReviews)
	assert.Equal(t, 1, card.CorrectReviews) // forgot は不正解
	assert.Equal(t, int64(1500), card.AvgResponseTimeMs)
}

func TestApply_InvalidAssessmentLeavesCardUntouched(t *testing.T) {
	card := newCard()
	got, err := Apply(card, model.Assessment("maybe"), 1000, testNow)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Equal(t, card, got)
}

func TestApply_Deterministic(t *testing.T) {
	card := model.Card{EaseFactor: 2.1, IntervalDays: 9, Repetitions: 4, Status: model.CardStatusLearning}

	a, err := Apply(card, model.AssessmentGood, 1234, testNow)
	require.NoError(t, err)
	b, err := Apply(card, model.AssessmentGood, 1234, testNow)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
