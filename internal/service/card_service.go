// internal/service/card_service.go
package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go_5_srs_engine/internal/clock"
	"go_5_srs_engine/internal/middleware"
	"go_5_srs_engine/internal/model"
	"go_5_srs_engine/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CardService interface {
	CreateCard(ctx context.Context, learnerID uuid.UUID, req *model.PostCardRequest) (*model.Card, error)
	GetCard(ctx context.Context, learnerID, cardID uuid.UUID) (*model.Card, error)
	ListCards(ctx context.Context, learnerID uuid.UUID) ([]*model.Card, error)
	DeleteCard(ctx context.Context, learnerID, cardID uuid.UUID) error
	GetDueCards(ctx context.Context, learnerID uuid.UUID) ([]*model.DueCardResponse, error)
	CountDueCards(ctx context.Context, learnerID uuid.UUID) (int64, error)
}

type cardService struct {
	db       *gorm.DB
	cardRepo repository.CardRepository
	clock    clock.Clock
	limit    int // dueCards の取得上限
}

func NewCardService(db *gorm.DB, cardRepo repository.CardRepository, clk clock.Clock, reviewLimit int) CardService {
	return &cardService{
		db:       db,
		cardRepo: cardRepo,
		clock:    clk,
		limit:    reviewLimit,
	}
}

func (s *cardService) CreateCard(ctx context.Context, learnerID uuid.UUID, req *model.PostCardRequest) (*model.Card, error) {
	logger := middleware.GetLogger(ctx).With("learner_id", learnerID)

	var createdCard *model.Card
	now := s.clock.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. (learner, vocabulary) の重複チェック
		exists, err := s.cardRepo.CheckVocabularyExists(ctx, tx, learnerID, req.VocabularyID)
		if err != nil {
			logger.Error("Error checking vocabulary existence in transaction", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "カードの重複確認に失敗しました。", "", err)
		}
		if exists {
			return model.NewAppError("CONFLICT", "この語彙のカードは既に存在します。", "vocabulary_id", model.ErrConflict)
		}

		// 2. 初期SM-2状態でカードを作成 (status=new, 即時復習対象)
		card := &model.Card{
			CardID:           uuid.New(),
			LearnerID:        learnerID,
			VocabularyID:     req.VocabularyID,
			Term:             req.Term,
			Definition:       req.Definition,
			PronunciationURL: req.PronunciationURL,
			EaseFactor:       2.5,
			IntervalDays:     0,
			Repetitions:      0,
			NextReviewDate:   now,
			Status:           model.CardStatusNew,
		}
		if err := s.cardRepo.Create(ctx, tx, card); err != nil {
			if errors.Is(err, model.ErrConflict) {
				return model.NewAppError("CONFLICT", "この語彙のカードは既に存在します。", "vocabulary_id", model.ErrConflict)
			}
			logger.Error("Error creating card in transaction", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "カードの作成に失敗しました。", "", err)
		}

		createdCard = card
		return nil // コミット
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Card created", "card_id", createdCard.CardID, "vocabulary_id", createdCard.VocabularyID)
	return createdCard, nil
}

func (s *cardService) GetCard(ctx context.Context, learnerID, cardID uuid.UUID) (*model.Card, error) {
	card, err := s.cardRepo.FindByID(ctx, s.db, learnerID, cardID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "カードが見つかりません。", "card_id", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "カードの取得に失敗しました。", "", err)
	}
	return card, nil
}

func (s *cardService) ListCards(ctx context.Context, learnerID uuid.UUID) ([]*model.Card, error) {
	cards, err := s.cardRepo.ListByLearner(ctx, s.db, learnerID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "カード一覧の取得に失敗しました。", "", err)
	}
	return cards, nil
}

func (s *cardService) DeleteCard(ctx context.Context, learnerID, cardID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("learner_id", learnerID, "card_id", cardID)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.cardRepo.Delete(ctx, tx, learnerID, cardID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("NOT_FOUND", "削除対象のカードが見つかりません。", "card_id", model.ErrNotFound)
		}
		logger.Error("Error deleting card", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "カードの削除に失敗しました。", "", err)
	}
	logger.Info("Card deleted")
	return nil
}

// GetDueCards は期限到来カードを緊急度順に返します。
// 並び順: 期限超過日数の降順、同値なら ease factor の昇順 (苦手カード優先)。
// 読み取り専用で、カード状態は一切変更しません。
func (s *cardService) GetDueCards(ctx context.Context, learnerID uuid.UUID) ([]*model.DueCardResponse, error) {
	logger := middleware.GetLogger(ctx).With("learner_id", learnerID)

	now := s.clock.Now()
	cards, err := s.cardRepo.FindDueByLearner(ctx, s.db, learnerID, now, s.limit)
	if err != nil {
		logger.Error("Failed to find due cards from repository", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "復習カードの取得に失敗しました。", "", err)
	}

	sortDueCards(cards, now)

	responses := make([]*model.DueCardResponse, 0, len(cards))
	for _, c := range cards {
		responses = append(responses, &model.DueCardResponse{
			CardID:      c.CardID,
			Term:        c.Term,
			Definition:  c.Definition,
			EaseFactor:  c.EaseFactor,
			DaysOverdue: c.DaysOverdue(now),
			Status:      c.Status,
		})
	}

	logger.Info("Successfully retrieved due cards", "count", len(responses))
	return responses, nil
}

func (s *cardService) CountDueCards(ctx context.Context, learnerID uuid.UUID) (int64, error) {
	count, err := s.cardRepo.CountDueByLearner(ctx, s.db, learnerID, s.clock.Now())
	if err != nil {
		return 0, model.NewAppError("INTERNAL_SERVER_ERROR", "復習カード数の取得に失敗しました。", "", err)
	}
	return count, nil
}

// sortDueCards は期限超過日数の降順、同値なら ease factor の昇順に並べます
func sortDueCards(cards []*model.Card, now time.Time) {
	sort.SliceStable(cards, func(i, j int) bool {
		oi := cards[i].DaysOverdue(now)
		oj := cards[j].DaysOverdue(now)
		if oi != oj {
			return oi > oj
		}
		return cards[i].EaseFactor < cards[j].EaseFactor
	})
}
