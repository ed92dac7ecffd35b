//go:build integration

// internal/repository/integration_test.go
//
// PostgreSQL コンテナに対してリポジトリ層を検証する統合テストです。
// Docker が必要なため integration ビルドタグで分離しています:
//
//	go test -tags integration ./internal/repository/
package repository_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"go_5_srs_engine/internal/model"
	"go_5_srs_engine/internal/repository"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=user",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=srs_engine_test",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start PostgreSQL resource: %s", err)
	}

	dsn := fmt.Sprintf("host=localhost port=%s user=user password=secret dbname=srs_engine_test sslmode=disable",
		resource.GetPort("5432/tcp"))

	if err = pool.Retry(func() error {
		var errRetry error
		testDB, errRetry = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if errRetry != nil {
			return errRetry
		}
		sqlDB, errRetry := testDB.DB()
		if errRetry != nil {
			return errRetry
		}
		return sqlDB.Ping()
	}); err != nil {
		if pErr := pool.Purge(resource); pErr != nil {
			log.Printf("Warning: Could not purge resource: %s", pErr)
		}
		log.Fatalf("Could not connect to PostgreSQL container: %s", err)
	}

	if err := testDB.AutoMigrate(
		&model.UserConfig{},
		&model.Card{},
		&model.ReviewSession{},
		&model.ReviewResponse{},
		&model.ActiveSession{},
		&model.NotificationStrategy{},
		&model.ScheduledNotification{},
	); err != nil {
		log.Fatalf("Could not migrate database: %s", err)
	}

	code := m.Run()

	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge PostgreSQL resource: %s", err)
	}
	os.Exit(code)
}

func TestGormCardRepository_CreateUniqueViolation(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewGormCardRepository()
	learnerID := uuid.New()
	now := time.Now().UTC()

	card := &model.Card{
		CardID:         uuid.New(),
		LearnerID:      learnerID,
		VocabularyID:   "vocab-unique",
		Term:           "term",
		Definition:     "definition",
		EaseFactor:     2.5,
		NextReviewDate: now,
		Status:         model.CardStatusNew,
	}
	require.NoError(t, repo.Create(ctx, testDB, card))

	// 同一 (learner_id, vocabulary_id) の複合一意制約違反は ErrConflict
	dup := &model.Card{
		CardID:         uuid.New(),
		LearnerID:      learnerID,
		VocabularyID:   "vocab-unique",
		Term:           "term2",
		Definition:     "definition2",
		EaseFactor:     2.5,
		NextReviewDate: now,
		Status:         model.CardStatusNew,
	}
	err := repo.Create(ctx, testDB, dup)
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestGormCardRepository_FindDueByLearner(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewGormCardRepository()
	learnerID := uuid.New()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		card := &model.Card{
			CardID:         uuid.New(),
			LearnerID:      learnerID,
			VocabularyID:   fmt.Sprintf("due-%d", i),
			Term:           "term",
			Definition:     "definition",
			EaseFactor:     2.5,
			NextReviewDate: now.AddDate(0, 0, -i),
			Status:         model.CardStatusNew,
		}
		require.NoError(t, repo.Create(ctx, testDB, card))
	}
	// 期限が未来のカード
	future := &model.Card{
		CardID:         uuid.New(),
		LearnerID:      learnerID,
		VocabularyID:   "future",
		Term:           "term",
		Definition:     "definition",
		EaseFactor:     2.5,
		NextReviewDate: now.AddDate(0, 0, 3),
		Status:         model.CardStatusGraduated,
	}
	require.NoError(t, repo.Create(ctx, testDB, future))

	due, err := repo.FindDueByLearner(ctx, testDB, learnerID, now, 50)
	require.NoError(t, err)
	assert.Len(t, due, 3)

	count, err := repo.CountDueByLearner(ctx, testDB, learnerID, now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	limited, err := repo.FindDueByLearner(ctx, testDB, learnerID, now, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGormSessionRepository_ActiveSessionCAS(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewGormSessionRepository()
	learnerID := uuid.New()

	first := &model.ActiveSession{LearnerID: learnerID, SessionID: uuid.New()}
	require.NoError(t, repo.CreateActive(ctx, testDB, first))

	// 同一学習者の2つ目のアクティブセッションは主キー重複で弾かれる
	second := &model.ActiveSession{LearnerID: learnerID, SessionID: uuid.New()}
	err := repo.CreateActive(ctx, testDB, second)
	assert.ErrorIs(t, err, model.ErrConflict)

	require.NoError(t, repo.DeleteActive(ctx, testDB, learnerID))

	// 解除後は再び作成できる
	third := &model.ActiveSession{LearnerID: learnerID, SessionID: uuid.New()}
	assert.NoError(t, repo.CreateActive(ctx, testDB, third))
}

func TestGormStrategyRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewGormStrategyRepository()
	learnerID := uuid.New()

	strategy := &model.NotificationStrategy{
		LearnerID:       learnerID,
		MostActiveHours: []int{9, 21},
		SessionsPerDay:  1.5,
		ResponseRate:    0.5,
		Frequency:       model.FrequencyMedium,
	}
	require.NoError(t, repo.Upsert(ctx, testDB, strategy))

	strategy.ResponseRate = 0.7
	strategy.MostActiveHours = []int{8}
	require.NoError(t, repo.Upsert(ctx, testDB, strategy))

	found, err := repo.FindByLearner(ctx, testDB, learnerID)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, found.ResponseRate, 0.001)
	assert.Equal(t, []int{8}, found.MostActiveHours)

	ids, err := repo.ListLearnerIDs(ctx, testDB)
	require.NoError(t, err)
	assert.Contains(t, ids, learnerID)
}

func TestGormNotificationRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewGormNotificationRepository()
	learnerID := uuid.New()

	for i := 0; i < 2; i++ {
		n := &model.ScheduledNotification{
			NotificationID: uuid.New(),
			LearnerID:      learnerID,
			FireTime:       time.Now().UTC().Add(time.Duration(i+1) * time.Hour),
			Message:        "復習カードが2件あります。",
			MessageStyle:   model.MessageStyleNeutral,
			DueCardCount:   2,
		}
		require.NoError(t, repo.Create(ctx, testDB, n))
	}

	tracked, err := repo.ListByLearner(ctx, testDB, learnerID)
	require.NoError(t, err)
	require.Len(t, tracked, 2)

	found, err := repo.FindByID(ctx, testDB, tracked[0].NotificationID)
	require.NoError(t, err)
	assert.Equal(t, learnerID, found.LearnerID)

	require.NoError(t, repo.DeleteByLearner(ctx, testDB, learnerID))

	_, err = repo.FindByID(ctx, testDB, tracked[0].NotificationID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
