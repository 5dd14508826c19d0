// Package sqlite is the default storage backend: an embedded database holding
// players, game records and the question bank, created on first run next to
// the server binary.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anacarcan/prueba/internal/domain"
	"github.com/anacarcan/prueba/internal/questions"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements the player store, the game recorder and the category
// loader over one sqlite file.
type Store struct {
	db *sql.DB
}

// Open connects to the sqlite file at path and creates the schema if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS jugador (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			nombre TEXT NOT NULL UNIQUE,
			puntuacion_total INTEGER NOT NULL DEFAULT 0,
			partidas_jugadas INTEGER NOT NULL DEFAULT 0,
			partidas_ganadas INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS partida (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			categoria TEXT NOT NULL,
			tipo TEXT NOT NULL,
			duracion_segundos INTEGER NOT NULL,
			total_preguntas INTEGER NOT NULL,
			completada BOOLEAN NOT NULL,
			fecha INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS jugador_partida (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			jugador TEXT NOT NULL,
			partida_id INTEGER NOT NULL,
			respuestas_correctas INTEGER NOT NULL,
			respuestas_incorrectas INTEGER NOT NULL,
			puntos_obtenidos INTEGER NOT NULL,
			ganador BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS pregunta (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			texto_pregunta TEXT NOT NULL,
			opcion_a TEXT NOT NULL,
			opcion_b TEXT NOT NULL,
			opcion_c TEXT NOT NULL,
			opcion_d TEXT NOT NULL,
			respuesta_correcta INTEGER NOT NULL,
			categoria TEXT NOT NULL,
			activa BOOLEAN NOT NULL DEFAULT 1
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) EnsureExists(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO jugador (nombre) VALUES (?)`, name)
	return err
}

func (s *Store) Stats(ctx context.Context, name string) (domain.PlayerStats, error) {
	var stats domain.PlayerStats
	err := s.db.QueryRowContext(ctx,
		`SELECT nombre, puntuacion_total, partidas_jugadas, partidas_ganadas
		 FROM jugador WHERE nombre = ?`, name).
		Scan(&stats.Name, &stats.TotalScore, &stats.GamesPlayed, &stats.GamesWon)
	if err == sql.ErrNoRows {
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
	return s.bump(ctx, `UPDATE jugador SET puntuacion_total = puntuacion_total + ? WHERE nombre = ?`, delta, name)
}

func (s *Store) IncrementPlayed(ctx context.Context, name string) error {
	return s.bump(ctx, `UPDATE jugador SET partidas_jugadas = partidas_jugadas + 1 WHERE nombre = ?`, name)
}

func (s *Store) IncrementWon(ctx context.Context, name string) error {
	return s.bump(ctx, `UPDATE jugador SET partidas_ganadas = partidas_ganadas + 1 WHERE nombre = ?`, name)
}

func (s *Store) bump(ctx context.Context, query string, args ...interface{}) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (s *Store) CreateGame(ctx context.Context, record domain.GameRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO partida (categoria, tipo, duracion_segundos, total_preguntas, completada, fecha)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.Category, string(record.Type), int64(record.Duration.Seconds()),
		record.Questions, record.Completed, record.FinishedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) RecordResult(ctx context.Context, gameID int64, result domain.PlayerGameResult) error {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT total_preguntas FROM partida WHERE id = ?`, gameID).Scan(&total)
	if err == sql.ErrNoRows {
		return domain.ErrGameNotFound
	}
	if err != nil {
		return fmt.Errorf("load game %d: %w", gameID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jugador_partida (jugador, partida_id, respuestas_correctas, respuestas_incorrectas, puntos_obtenidos, ganador)
		 VALUES (?, ?, ?, ?, ?, ?)`,
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
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pregunta WHERE categoria = ? AND activa = 1`, category).Scan(&count); err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if count == 0 {
		if err := s.seedCategory(ctx, category); err != nil {
			return nil, err
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, texto_pregunta, opcion_a, opcion_b, opcion_c, opcion_d, respuesta_correcta, categoria
		 FROM pregunta WHERE categoria = ? AND activa = 1 ORDER BY id`, category)
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
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	for _, q := range bank {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pregunta (texto_pregunta, opcion_a, opcion_b, opcion_c, opcion_d, respuesta_correcta, categoria)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.Correct, category); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("seed %s: %w", category, err)
		}
	}
	return tx.Commit()
}
