package repository

import (
	"auth-web-server/config"
	"auth-web-server/internal/util"
	"context"
	"fmt"
	"time"
)

// BlacklistRepository : учёт выданных и отозванных токенов в Redis.
// Ключи живут не дольше refresh TTL: после естественного истечения подписи
// токен и так не пройдёт валидацию, запись о нём больше не нужна.
type BlacklistRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewBlacklistRepository(rdb *config.RedisClient, ttl time.Duration) *BlacklistRepository {
	return &BlacklistRepository{rdb, ttl}
}

// RecordOutstanding : регистрирует выданный токен как действующий
func (r *BlacklistRepository) RecordOutstanding(ctx context.Context, tokenUUID, userUUID string) error {
	cmd := r.client.Client.Set(ctx, r.outstandingKey(tokenUUID), userUUID, r.ttl)
	if err := cmd.Err(); err != nil {
		return util.LogError("ошибка сохранения выданного токена в Redis", err)
	}

	return nil
}

// Blacklist : отзывает токен по его UUID. Идемпотентна, безопасна для
// неизвестных UUID. Операции снятия с отзыва не существует.
func (r *BlacklistRepository) Blacklist(ctx context.Context, tokenUUID string) error {
	cmd := r.client.Client.Set(ctx, r.blacklistKey(tokenUUID), "1", r.ttl)
	if err := cmd.Err(); err != nil {
		return util.LogError("ошибка сохранения отозванного токена в Redis", err)
	}

	if err := r.client.Client.Del(ctx, r.outstandingKey(tokenUUID)).Err(); err != nil {
		return util.LogError("ошибка удаления выданного токена из Redis", err)
	}

	return nil
}

// IsBlacklisted : проверяет, отозван ли токен
func (r *BlacklistRepository) IsBlacklisted(ctx context.Context, tokenUUID string) (bool, error) {
	count, err := r.client.Client.Exists(ctx, r.blacklistKey(tokenUUID)).Result()
	if err != nil {
		return false, util.LogError("ошибка проверки чёрного списка в Redis", err)
	}

	return count > 0, nil
}

func (r *BlacklistRepository) blacklistKey(tokenUUID string) string {
	return fmt.Sprintf("blacklist:%s", tokenUUID)
}

func (r *BlacklistRepository) outstandingKey(tokenUUID string) string {
	return fmt.Sprintf("outstanding:%s", tokenUUID)
}
