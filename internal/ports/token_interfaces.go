package ports

import (
	"auth-web-server/internal/model"
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// BlacklistRepositoryInterface : Redis слой учёта выданных и отозванных токенов
type BlacklistRepositoryInterface interface {
	RecordOutstanding(ctx context.Context, tokenUUID, userUUID string) error
	Blacklist(ctx context.Context, tokenUUID string) error
	IsBlacklisted(ctx context.Context, tokenUUID string) (bool, error)
}

// OneTimeTokenRepositoryInterface : SQL слой одноразовых токенов
type OneTimeTokenRepositoryInterface interface {
	SaveToken(ctx context.Context, exec sqlx.ExtContext, token *model.OneTimeToken) error
	ConsumeToken(ctx context.Context, exec sqlx.ExtContext, kind, token string) (*model.OneTimeToken, error)
	ConsumeUserToken(ctx context.Context, exec sqlx.ExtContext, kind, token, userUUID string) (*model.OneTimeToken, error)
	DeleteExpired(ctx context.Context, exec sqlx.ExtContext, now time.Time) (int64, error)
}
