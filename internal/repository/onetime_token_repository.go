package repository

import (
	"auth-web-server/config"
	"auth-web-server/internal/model"
	"auth-web-server/internal/util"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type OneTimeTokenRepository struct {
	*config.Database
}

func NewOneTimeTokenRepository(database *config.Database) *OneTimeTokenRepository {
	return &OneTimeTokenRepository{database}
}

// SaveToken сохраняет одноразовый токен.
// Уникальность строки токена обеспечивается уникальным индексом:
// при коллизии вставка не выполняется и возвращается model.ErrTokenCollision,
// вызывающая сторона генерирует новую строку.
func (r *OneTimeTokenRepository) SaveToken(ctx context.Context, exec sqlx.ExtContext, token *model.OneTimeToken) error {
	query := `INSERT INTO one_time_tokens (token, kind, user_uuid, created_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (token) DO NOTHING
	`

	result, err := exec.ExecContext(ctx, query,
		token.Token,
		token.Kind,
		token.UserUUID,
		token.CreatedAt,
	)

	if err != nil {
		return util.LogError("[OneTimeTokenRepo] ошибка вставки данных в БД", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[OneTimeTokenRepo] не удалось проверить, вставлен ли токен", err)
	}
	if rowsAffected == 0 {
		return model.ErrTokenCollision
	}

	return nil
}

// ConsumeToken атомарно изымает токен: поиск и удаление выполняются одним
// DELETE ... RETURNING, поэтому из двух конкурентных запросов строку
// получит ровно один. Срок действия проверяет вызывающая сторона по
// возвращённому created_at.
func (r *OneTimeTokenRepository) ConsumeToken(ctx context.Context, exec sqlx.ExtContext, kind, token string) (*model.OneTimeToken, error) {
	query := `DELETE FROM one_time_tokens WHERE token = $1 AND kind = $2 RETURNING user_uuid, created_at`

	consumed := &model.OneTimeToken{Token: token, Kind: kind}
	err := exec.QueryRowxContext(ctx, query, token, kind).Scan(&consumed.UserUUID, &consumed.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTokenNotFound
		}
		return nil, util.LogError("[OneTimeTokenRepo] ошибка при выполнении запроса", err)
	}

	return consumed, nil
}

// ConsumeUserToken изымает токен, принадлежащий конкретному пользователю.
// Используется сбросом пароля: чужой токен не подходит и не удаляется.
func (r *OneTimeTokenRepository) ConsumeUserToken(ctx context.Context, exec sqlx.ExtContext, kind, token, userUUID string) (*model.OneTimeToken, error) {
	query := `DELETE FROM one_time_tokens WHERE token = $1 AND kind = $2 AND user_uuid = $3 RETURNING created_at`

	consumed := &model.OneTimeToken{Token: token, Kind: kind, UserUUID: userUUID}
	err := exec.QueryRowxContext(ctx, query, token, kind, userUUID).Scan(&consumed.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTokenNotFound
		}
		return nil, util.LogError("[OneTimeTokenRepo] ошибка при выполнении запроса", err)
	}

	return consumed, nil
}

// DeleteExpired удаляет токены, чьё окно действия истекло к моменту now.
// Просроченный токен и без того отклоняется при изъятии, поэтому
// чистка нужна только чтобы таблица не росла бесконечно.
func (r *OneTimeTokenRepository) DeleteExpired(ctx context.Context, exec sqlx.ExtContext, now time.Time) (int64, error) {
	query := `DELETE FROM one_time_tokens WHERE created_at < $1`

	result, err := exec.ExecContext(ctx, query, now.Add(-model.OneTimeTokenTTL))
	if err != nil {
		return 0, util.LogError("[OneTimeTokenRepo] не удалось удалить просроченные токены", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError("[OneTimeTokenRepo] не удалось получить число удалённых токенов", err)
	}

	return rowsAffected, nil
}
