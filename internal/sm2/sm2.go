// internal/sm2/sm2.go
package sm2

import (
	"math"
	"time"

	"go_5_srs_engine/internal/model"
)

// SM-2アルゴリズムの定数
const (
	// 合格とみなす品質スコアの下限
	PassThreshold = 3
	// ease factor の下限 (SM-2の仕様値)
	MinEaseFactor = 1.3
	// learning -> graduated に昇格する間隔の下限 (日)
	GraduationIntervalDays = 21
)

// Quality は自己評価を 0-5 の品質スコアに変換します
func Quality(a model.Assessment) (int, error) {
	switch a {
	case model.AssessmentForgot:
		return 0, nil
	case model.AssessmentHard:
		return 3, nil
	case model.AssessmentGood:
		return 4, nil
	case model.AssessmentEasy:
		return 5, nil
	default:
		return 0, model.NewAppError("VALIDATION_ERROR", "評価値が不正です。", "assessment", model.ErrInvalidInput)
	}
}

// Apply はSM-2アルゴリズムで1回の復習結果をカードに適用し、更新後の
// コピーを返します。(card, assessment, responseTimeMs, now) が同じなら
// 結果は常に同じです。I/O・乱数・隠れた時刻参照は持ちません。
func Apply(card model.Card, assessment model.Assessment, responseTimeMs int64, now time.Time) (model.Card, error) {
	quality, err := Quality(assessment)
	if err != nil {
		return card, err
	}

	if quality >= PassThreshold {
		// 成功: 間隔は更新前の ease factor で計算する
		switch card.Repetitions {
		case 0:
			card.IntervalDays = 1
		case 1:
			card.IntervalDays = 6
		default:
			card.IntervalDays = int(math.Round(float64(card.IntervalDays) * card.EaseFactor))
		}
		card.Repetitions++
		card.CorrectReviews++

		switch card.Status {
		case model.CardStatusNew:
			card.Status = model.CardStatusLearning
		case model.CardStatusLearning:
			if card.IntervalDays >= GraduationIntervalDays {
				card.Status = model.CardStatusGraduated
			}
		}
	} else {
		// 失敗: 進捗をリセット。graduated でも learning に降格させる
		card.Repetitions = 0
		card.IntervalDays = 1
		card.Status = model.CardStatusLearning
	}

	// ease factor の更新は成否に関わらず常に行い、下限でクランプする
	ease := card.EaseFactor + 0.1 - float64(5-quality)*(0.08+float64(5-quality)*0.02)
	if ease < MinEaseFactor {
		ease = MinEaseFactor
	}
	card.EaseFactor = ease

	card.NextReviewDate = now.AddDate(0, 0, card.IntervalDays)

	// 統計情報の更新 (移動平均)
	card.TotalReviews++
	card.AvgResponseTimeMs += (responseTimeMs - card.AvgResponseTimeMs) / int64(card.TotalReviews)

	return card, nil
}
