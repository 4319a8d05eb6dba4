package discover

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ghsmc/intro-v2-sub000/internal/engine"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// ProfileDB is the postgres-backed ProfileStore.
type ProfileDB struct {
	pool *pgxpool.Pool
}

// ConnectProfileDB creates a pgx pool and runs schema migrations.
func ConnectProfileDB(ctx context.Context, databaseURL string) (*ProfileDB, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db := &ProfileDB{pool: pool}
	if err := db.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("profile postgres connected", slog.String("addr", config.ConnConfig.Host))
	return db, nil
}

func (db *ProfileDB) Close() {
	db.pool.Close()
}

func (db *ProfileDB) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := db.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Info("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

// GetProfile loads one user profile. A missing row is (nil, nil).
func (db *ProfileDB) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	engine.IncrProfileLookups()

	p := Profile{UserID: userID}
	var level *string
	var classYear *int
	err := db.pool.QueryRow(ctx,
		`SELECT skills, core_values, locations, salary_expectation, experience_level, class_year
		 FROM user_profiles WHERE user_id = $1`, userID,
	).Scan(&p.Skills, &p.Values, &p.Locations, &p.SalaryExpectation, &level, &classYear)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	if level != nil {
		p.ExperienceLevel = LevelTag(*level)
	}
	if classYear != nil {
		p.ClassYear = *classYear
	}
	for i, s := range p.Skills {
		p.Skills[i] = strings.ToLower(s)
	}
	return &p, nil
}

// UpsertProfile writes one user profile, replacing any existing row.
func (db *ProfileDB) UpsertProfile(ctx context.Context, p Profile) error {
	var level *string
	if p.ExperienceLevel != "" {
		s := string(p.ExperienceLevel)
		level = &s
	}
	var classYear *int
	if p.ClassYear != 0 {
		classYear = &p.ClassYear
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO user_profiles (user_id, skills, core_values, locations, salary_expectation, experience_level, class_year, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		 ON CONFLICT (user_id) DO UPDATE SET
		   skills = EXCLUDED.skills,
		   core_values = EXCLUDED.core_values,
		   locations = EXCLUDED.locations,
		   salary_expectation = EXCLUDED.salary_expectation,
		   experience_level = EXCLUDED.experience_level,
		   class_year = EXCLUDED.class_year,
		   updated_at = now()`,
		p.UserID, p.Skills, p.Values, p.Locations, p.SalaryExpectation, level, classYear,
	)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return nil
}
