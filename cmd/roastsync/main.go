package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"roastsync/auth"
	"roastsync/config"
	"roastsync/migrations"
	"roastsync/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	db, err := sqlx.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open DB")
	}

	err = migrations.Migrate(cfg.PostgresDSN)
	if err != nil {
		logrus.WithError(err).Fatal("failed to migrate")
	}

	err = bootstrapSuperuser(db, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create initial superuser")
	}

	ws := fiber.New()

	ws.Use(recover.New(), logger.New(), cors.New())

	ws.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"message": "RoastSync API"})
	})

	web.New(db, cfg).Register(ws)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := ws.Listen(cfg.BindAddr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("failed to start web server")
		}
	}()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit

	err = ws.Shutdown()
	if err != nil {
		logrus.WithError(err).Fatal("failed to shutdown web server")
	}

	wg.Wait()
}

// bootstrapSuperuser creates the first admin account from the environment.
// A no-op when the variables are unset or the account already exists.
func bootstrapSuperuser(db *sqlx.DB, cfg config.Config) error {
	if cfg.FirstSuperuserEmail == "" || cfg.FirstSuperuserPassword == "" {
		return nil
	}

	hash, err := auth.HashPassword(cfg.FirstSuperuserPassword)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		insert into app_user (email, full_name, is_active, is_superuser, hashed_password)
		values ($1, 'Admin', true, true, $2)
		on conflict (email) do nothing
	`, cfg.FirstSuperuserEmail, hash)
	return err
}
