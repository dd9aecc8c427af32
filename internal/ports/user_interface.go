package ports

import (
	"auth-web-server/internal/model"
	"context"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error)
	FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error)
	UpdateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) error
	UpdatePassword(ctx context.Context, exec sqlx.ExtContext, uuid, newPasswordHash string) error
	SetVerified(ctx context.Context, exec sqlx.ExtContext, uuid string) error
	ExistsByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (bool, error)
}

type UserService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*model.TokensPair, string, error)
	GetProfile(ctx context.Context) (*model.User, error)
	UpdateProfile(ctx context.Context, email, firstName, lastName string) (*model.User, error)
	ChangePassword(ctx context.Context, newPassword string) error
	SendPasswordResetToken(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}
