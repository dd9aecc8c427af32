package main

import (
	"auth-web-server/config"
	_ "auth-web-server/docs"
	"auth-web-server/internal/handler"
	"auth-web-server/internal/notifier"
	"auth-web-server/internal/repository"
	"auth-web-server/internal/security"
	"auth-web-server/internal/service"
	"context"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// @title Auth-web-server
// @version 1.0
// @description REST API аутентификации: регистрация, вход, подтверждение email, сброс пароля, обновление и отзыв токенов

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	refreshTTL, err := time.ParseDuration(cfg.JWT.RefreshTokenTTL)
	if err != nil {
		log.Fatalf("Ошибка парсинга refresh_token_ttl: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	userRepo := repository.NewUserRepository(db)
	oneTimeTokenRepo := repository.NewOneTimeTokenRepository(db)
	blacklistRepo := repository.NewBlacklistRepository(redisClient, refreshTTL)

	jwtService := security.NewJWTService(&cfg.JWT)
	emailNotifier := notifier.NewEmailNotifier(&cfg.SMTP)

	authService := service.NewAuthenticationService(jwtService, blacklistRepo, oneTimeTokenRepo, userRepo)
	userService := service.NewUserService(userRepo, jwtService, blacklistRepo, oneTimeTokenRepo, emailNotifier)

	authHandler := handler.NewAuthenticationHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	router.Use(config.DBMiddleware(db))
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	setupAuthRoutes(router, authHandler, userHandler, jwtService, blacklistRepo)

	go runOneTimeTokenSweeper(ctx, db, oneTimeTokenRepo)

	runServer(ctx, srv)
}

// setupAuthRoutes разводит операции по группам: публичные и требующие
// действующий access токен
func setupAuthRoutes(r chi.Router, authHandler *handler.AuthenticationHandler, userHandler *handler.UserHandler, jwtService *security.JWTService, blacklistRepo *repository.BlacklistRepository) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", userHandler.Register)
			r.Get("/verify_email", authHandler.VerifyEmail)
			r.Get("/send_password_reset_token", userHandler.SendPasswordResetToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware(jwtService, blacklistRepo))
			r.Get("/profile", userHandler.GetProfile)
			r.Put("/profile", userHandler.UpdateProfile)
			r.Post("/change_password", userHandler.ChangePassword)
			r.Post("/reset_password", userHandler.ResetPassword)
			r.Post("/refresh_token", authHandler.RefreshToken)
			r.Get("/logout", authHandler.Logout)
		})
	})
}

// runOneTimeTokenSweeper раз в час удаляет просроченные одноразовые токены
func runOneTimeTokenSweeper(ctx context.Context, db *config.Database, repo *repository.OneTimeTokenRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteExpired(ctx, db, time.Now().UTC())
			if err != nil {
				log.Printf("ошибка чистки одноразовых токенов: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("удалено просроченных одноразовых токенов: %d", deleted)
			}
		}
	}
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
