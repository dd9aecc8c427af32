package repository_test

import (
	"auth-web-server/internal/model"
	"auth-web-server/internal/repository"
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestSaveToken(t *testing.T) {
	query := regexp.QuoteMeta(`INSERT INTO one_time_tokens (token, kind, user_uuid, created_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (token) DO NOTHING`)

	token := &model.OneTimeToken{
		Token:     "tok",
		Kind:      model.OneTimeTokenKindEmailVerification,
		UserUUID:  "user-123",
		CreatedAt: time.Now().UTC(),
	}

	t.Run("inserted", func(t *testing.T) {
		database, mockDB := newMockDatabase(t)
		repo := repository.NewOneTimeTokenRepository(database)

		mockDB.ExpectExec(query).
			WithArgs(token.Token, token.Kind, token.UserUUID, token.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveToken(context.Background(), database, token)
		assert.NoError(t, err)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("collision", func(t *testing.T) {
		database, mockDB := newMockDatabase(t)
		repo := repository.NewOneTimeTokenRepository(database)

		mockDB.ExpectExec(query).
			WithArgs(token.Token, token.Kind, token.UserUUID, token.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveToken(context.Background(), database, token)
		assert.True(t, errors.Is(err, model.ErrTokenCollision))
	})
}

func TestConsumeToken(t *testing.T) {
	query := regexp.QuoteMeta(`DELETE FROM one_time_tokens WHERE token = $1 AND kind = $2 RETURNING user_uuid, created_at`)

	t.Run("consumed", func(t *testing.T) {
		database, mockDB := newMockDatabase(t)
		repo := repository.NewOneTimeTokenRepository(database)

		createdAt := time.Now().UTC()
		mockDB.ExpectQuery(query).
			WithArgs("tok", model.OneTimeTokenKindEmailVerification).
			WillReturnRows(sqlmock.NewRows([]string{"user_uuid", "created_at"}).AddRow("user-123", createdAt))

		consumed, err := repo.ConsumeToken(context.Background(), database, model.OneTimeTokenKindEmailVerification, "tok")

		assert.NoError(t, err)
		assert.Equal(t, "user-123", consumed.UserUUID)
		assert.Equal(t, createdAt, consumed.CreatedAt)
	})

	// повторное изъятие того же токена: строки уже нет
	t.Run("already consumed", func(t *testing.T) {
		database, mockDB := newMockDatabase(t)
		repo := repository.NewOneTimeTokenRepository(database)

		mockDB.ExpectQuery(query).
			WithArgs("tok", model.OneTimeTokenKindEmailVerification).
			WillReturnError(sql.ErrNoRows)

		consumed, err := repo.ConsumeToken(context.Background(), database, model.OneTimeTokenKindEmailVerification, "tok")

		assert.True(t, errors.Is(err, model.ErrTokenNotFound))
		assert.Nil(t, consumed)
	})

	// токен того же вида, но другого kind не изымается
	t.Run("kind mismatch", func(t *testing.T) {
		database, mockDB := newMockDatabase(t)
		repo := repository.NewOneTimeTokenRepository(database)

		mockDB.ExpectQuery(query).
			WithArgs("tok", model.OneTimeTokenKindPasswordReset).
			WillReturnError(sql.ErrNoRows)

		consumed, err := repo.ConsumeToken(context.Background(), database, model.OneTimeTokenKindPasswordReset, "tok")

		assert.True(t, errors.Is(err, model.ErrTokenNotFound))
		assert.Nil(t, consumed)
	})
}

func TestConsumeUserToken(t *testing.T) {
	query := regexp.QuoteMeta(`DELETE FROM one_time_tokens WHERE token = $1 AND kind = $2 AND user_uuid = $3 RETURNING created_at`)

	t.Run("consumed by owner", func(t *testing.T) {
		database, mockDB := newMockDatabase(t)
		repo := repository.NewOneTimeTokenRepository(database)

		createdAt := time.Now().UTC()
		mockDB.ExpectQuery(query).
			WithArgs("tok", model.OneTimeTokenKindPasswordReset, "user-123").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

		consumed, err := repo.ConsumeUserToken(context.Background(), database, model.OneTimeTokenKindPasswordReset, "tok", "user-123")

		assert.NoError(t, err)
		assert.Equal(t, "user-123", consumed.UserUUID)
		assert.Equal(t, createdAt, consumed.CreatedAt)
	})

	t.Run("foreign token", func(t *testing.T) {
		database, mockDB := newMockDatabase(t)
		repo := repository.NewOneTimeTokenRepository(database)

		mockDB.ExpectQuery(query).
			WithArgs("tok", model.OneTimeTokenKindPasswordReset, "user-999").
			WillReturnError(sql.ErrNoRows)

		consumed, err := repo.ConsumeUserToken(context.Background(), database, model.OneTimeTokenKindPasswordReset, "tok", "user-999")

		assert.True(t, errors.Is(err, model.ErrTokenNotFound))
		assert.Nil(t, consumed)
	})
}

func TestDeleteExpired(t *testing.T) {
	database, mockDB := newMockDatabase(t)
	repo := repository.NewOneTimeTokenRepository(database)

	now := time.Now().UTC()
	mockDB.ExpectExec(regexp.QuoteMeta(`DELETE FROM one_time_tokens WHERE created_at < $1`)).
		WithArgs(now.Add(-model.OneTimeTokenTTL)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteExpired(context.Background(), database, now)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}
