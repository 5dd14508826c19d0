package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/anacarcan/prueba/internal/domain"
	"github.com/anacarcan/prueba/internal/questions"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Store implements the player store, the game recorder and the category
// loader over a Postgres pool. The schema is managed by the bun migrations in
// the sibling migrations package.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) EnsureExists(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jugador (nombre) VALUES ($1) ON CONFLICT (nombre) DO NOTHING`, name)
	return err
}

func (s *Store) Stats(ctx context.Context, name string) (domain.PlayerStats, error) {
	var stats domain.PlayerStats
	err := s.pool.QueryRow(ctx,
		`SELECT nombre, puntuacion_total, partidas_jugadas, partidas_ganadas
		 FROM jugador WHERE nombre = $1`, name).
		Scan(&stats.Name, &stats.TotalScore, &stats.GamesPlayed, &stats.GamesWon)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PlayerStats{}, domain.ErrPlayerNotFound
	}
	if err != nil {
		return domain.PlayerStats{}, fmt.Errorf("load player %s: %w", name, err)
	}
	return stats, nil
}

func (s *Store) TotalScore(ctx context.Context, name string) (int, error) {
	stats, err := s.Stats(ctx, name)
	if err != nil {
		return 0, err
	}
	return stats.TotalScore, nil
}

func (s *Store) AddScore(ctx context.Context, name string, delta int) error {
	return s.bump(ctx, `UPDATE jugador SET puntuacion_total = puntuacion_total + $1 WHERE nombre = $2`, delta, name)
}

func (s *Store) IncrementPlayed(ctx context.Context, name string) error {
	return s.bump(ctx, `UPDATE jugador SET partidas_jugadas = partidas_jugadas + 1 WHERE nombre = $1`, name)
}

func (s *Store) IncrementWon(ctx context.Context, name string) error {
	return s.bump(ctx, `UPDATE jugador SET partidas_ganadas = partidas_ganadas + 1 WHERE nombre = $1`, name)
}

func (s *Store) bump(ctx context.Context, query string, args ...interface{}) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (s *Store) CreateGame(ctx context.Context, record domain.GameRecord) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO partida (categoria, tipo, duracion_segundos, total_preguntas, completada, fecha)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		record.Category, string(record.Type), int64(record.Duration.Seconds()),
		record.Questions, record.Completed, record.FinishedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}
	return id, nil
}

func (s *Store) RecordResult(ctx context.Context, gameID int64, result domain.PlayerGameResult) error {
	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT total_preguntas FROM partida WHERE id = $1`, gameID).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrGameNotFound
	}
	if err != nil {
		return fmt.Errorf("load game %d: %w", gameID, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO jugador_partida (jugador, partida_id, respuestas_correctas, respuestas_incorrectas, puntos_obtenidos, ganador)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		result.Name, gameID, result.Correct, total-result.Correct, result.Points, result.Winner)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// LoadCategory returns a category's active questions, seeding the table from
// the bundled files the first time the category is requested.
func (s *Store) LoadCategory(ctx context.Context, category string) ([]domain.Question, error) {
	var count int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM pregunta WHERE categoria = $1 AND activa`, category).Scan(&count); err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if count == 0 {
		if err := s.seedCategory(ctx, category); err != nil {
			return nil, err
		}
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, texto_pregunta, opcion_a, opcion_b, opcion_c, opcion_d, respuesta_correcta, categoria
		 FROM pregunta WHERE categoria = $1 AND activa ORDER BY id`, category)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3], &q.Correct, &q.Category); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return out, nil
}

func (s *Store) seedCategory(ctx context.Context, category string) error {
	bank, err := questions.Load(category)
	if err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(ctx)
	for _, q := range bank {
		if _, err := tx.Exec(ctx,
			`INSERT INTO pregunta (texto_pregunta, opcion_a, opcion_b, opcion_c, opcion_d, respuesta_correcta, categoria)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.Correct, category); err != nil {
			return fmt.Errorf("seed %s: %w", category, err)
		}
	}
	return tx.Commit(ctx)
}
