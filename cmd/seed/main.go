// seed inserts development sample data: an admin, a player, and a few categories with questions.
// Idempotent: skips everything if the admin user (admin@example.com) already exists.
package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	categorydomain "quiz-arena/backend/internal/category/domain"
	categoryrepo "quiz-arena/backend/internal/category/repository"
	"quiz-arena/backend/internal/config"
	"quiz-arena/backend/internal/db"
	qlog "quiz-arena/backend/internal/log"
	questiondomain "quiz-arena/backend/internal/question/domain"
	questionrepo "quiz-arena/backend/internal/question/repository"
	"quiz-arena/backend/internal/security"
	userdomain "quiz-arena/backend/internal/user/domain"
	userrepo "quiz-arena/backend/internal/user/repository"
)

const (
	adminEmail  = "admin@example.com"
	playerEmail = "player@example.com"
	devPassword = "password123"
)

var sampleQuestions = map[string][]string{
	"Geography": {
		"What is the largest ocean on Earth?",
		"Which river flows through Cairo?",
		"What is the capital of Australia?",
	},
	"Science": {
		"What is the chemical symbol for gold?",
		"How many planets are in the solar system?",
		"What gas do plants absorb from the air?",
	},
	"History": {
		"In which year did the Berlin Wall fall?",
		"Who was the first emperor of Rome?",
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	qlog.Init(cfg.Env, cfg.LogLevel)
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db")
	}
	defer pool.Close()

	existing, err := userrepo.NewPostgresRepository(pool).GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatal().Err(err).Msg("seed check")
	}
	if existing != nil {
		log.Info().Msg("seed already applied (admin@example.com exists), skipping")
		os.Exit(0)
	}

	passwordHash, err := security.NewHasher(cfg.BcryptCost).Hash(devPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}

	err = db.InTx(ctx, pool, func(tx pgx.Tx) error {
		return seed(ctx, tx, passwordHash, time.Now().UTC())
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().Str("admin", adminEmail).Str("player", playerEmail).Str("password", devPassword).Msg("seed applied")
}

func seed(ctx context.Context, tx pgx.Tx, passwordHash string, now time.Time) error {
	users := userrepo.NewPostgresRepository(tx)
	for _, u := range []*userdomain.User{
		{Email: adminEmail, Username: "admin", Gender: userdomain.GenderOther, Country: "NZ", Role: userdomain.RoleAdmin},
		{Email: playerEmail, Username: "player", Gender: userdomain.GenderFemale, Country: "IN", Role: userdomain.RoleUser},
	} {
		u.ID = uuid.New().String()
		u.PasswordHash = passwordHash
		u.CreatedAt, u.UpdatedAt = now, now
		if err := users.Create(ctx, u); err != nil {
			return err
		}
	}

	categories := categoryrepo.NewPostgresRepository(tx)
	questions := questionrepo.NewPostgresRepository(tx)
	for name, contents := range sampleQuestions {
		c := &categorydomain.Category{ID: uuid.New().String(), Name: name, CreatedAt: now, UpdatedAt: now}
		if err := categories.Create(ctx, c); err != nil {
			return err
		}
		for i, content := range contents {
			at := now.Add(time.Duration(i) * time.Second)
			q := &questiondomain.Question{ID: uuid.New().String(), Content: content, CategoryID: c.ID, CreatedAt: at, UpdatedAt: at}
			if err := questions.Create(ctx, q); err != nil {
				return err
			}
		}
	}
	return nil
}
