// Package protocol defines the newline-terminated wire format spoken between
// server and clients: semicolon-separated fields, colon-separated key:value
// sub-fields. Client lines are decoded once, at the transport boundary, into
// a tagged union so the rest of the code never string-matches raw input.
package protocol

import (
	"fmt"
	"strings"

	"github.com/anacarcan/prueba/internal/domain"
)

// CancelKeyword cancels the player's current context at any point.
const CancelKeyword = "cancelar"

const (
	cmdStats = "estadisticas"
	cmdScore = "puntuacion"
)

// ClientMessage is one decoded client line.
type ClientMessage interface{ clientMessage() }

// Cancel is the explicit cancel keyword or the sentinel injected on disconnect.
type Cancel struct{}

// StatsCommand asks for the player's cumulative statistics.
type StatsCommand struct{}

// ScoreCommand asks for the player's total score.
type ScoreCommand struct{}

// Selection is a "<categoria>:<modo>" pair, not yet validated.
type Selection struct {
	Category string
	Mode     string
}

// Answer is a single answer letter A-D (upper-cased).
type Answer struct {
	Letter string
}

// Text is any other free-form line, e.g. a display name.
type Text struct {
	Value string
}

func (Cancel) clientMessage()       {}
func (StatsCommand) clientMessage() {}
func (ScoreCommand) clientMessage() {}
func (Selection) clientMessage()    {}
func (Answer) clientMessage()       {}
func (Text) clientMessage()         {}

// Parse decodes one client line. It never fails; unrecognized input is Text.
func Parse(line string) ClientMessage {
	trimmed := strings.TrimSpace(line)
	switch strings.ToLower(trimmed) {
	case CancelKeyword:
		return Cancel{}
	case cmdStats:
		return StatsCommand{}
	case cmdScore:
		return ScoreCommand{}
	}
	if len(trimmed) == 1 {
		upper := strings.ToUpper(trimmed)
		if upper >= "A" && upper <= "D" {
			return Answer{Letter: upper}
		}
	}
	if parts := strings.Split(trimmed, ":"); len(parts) == 2 {
		return Selection{
			Category: strings.ToLower(strings.TrimSpace(parts[0])),
			Mode:     strings.ToLower(strings.TrimSpace(parts[1])),
		}
	}
	return Text{Value: trimmed}
}

// IsCancel reports whether the line is the cancel keyword, case-insensitively.
func IsCancel(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), CancelKeyword)
}

// Server-to-client messages. The exact field names are load-bearing: the
// desktop client and the interop tests match on them byte for byte.

func NameRequest() string         { return "SOLICITUD_NOMBRE" }
func ConnectionCancelled() string { return "CONEXION_CANCELADA" }
func GameCancelled() string       { return "PARTIDA_CANCELADA" }
func AnswerRequest() string       { return "SOLICITAR_RESPUESTA" }
func AnswerCorrect() string       { return "RESPUESTA_CORRECTA" }
func AnswerIncorrect() string     { return "RESPUESTA_INCORRECTA" }
func AnswerTimeout() string       { return "TIMEOUT" }

func Categories(categories []string) string {
	return "CATEGORIAS_DISPONIBLES;" + strings.Join(categories, ";")
}

func Busy() string {
	return "PARTIDA_EN_CURSO;MENSAJE:Hay una partida multijugador en curso. Espera o juega solo."
}

func InvalidSelection() string {
	return "SELECCION_INVALIDA;FORMATO:categoria:modo"
}

func InvalidCategory(category string) string {
	return "CATEGORIA_INVALIDA;" + category
}

func InvalidMode(mode string) string {
	return "MODO_INVALIDO;" + mode
}

func Stats(stats domain.PlayerStats) string {
	return fmt.Sprintf("ESTADISTICAS;Estadisticas de %s|Puntos totales: %d|Partidas jugadas: %d|Partidas ganadas: %d|Porcentaje de victorias: %.1f%%",
		stats.Name, stats.TotalScore, stats.GamesPlayed, stats.GamesWon, stats.WinRate())
}

func TotalScore(points int) string {
	return fmt.Sprintf("PUNTUACION_TOTAL;%d", points)
}

func SoloMatchFound(category string) string {
	return "PARTIDA_ENCONTRADA;TIPO:SOLO;CATEGORIA:" + category
}

func MultiplayerMatchFound(opponent, category string) string {
	return "PARTIDA_ENCONTRADA;TIPO:MULTIJUGADOR;OPONENTE:" + opponent + ";CATEGORIA:" + category
}

func SoloGameStarted(category string) string {
	return "PARTIDA_SOLO_INICIADA;CATEGORIA:" + category
}

func GameStarted(opponent, category string) string {
	return "PARTIDA_INICIADA;OPONENTE:" + opponent + ";CATEGORIA:" + category
}

func QuestionMessage(number, total int, q domain.Question) string {
	return fmt.Sprintf("PREGUNTA;NUMERO:%d;TOTAL:%d;TEXTO:%s;A:%s;B:%s;C:%s;D:%s",
		number, total, q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3])
}

// RoundResult carries the correct letter and running correct-counts. The
// second count is omitted in solo games.
func RoundResult(correctLetter string, correctJ1 int, correctJ2 *int) string {
	if correctJ2 == nil {
		return fmt.Sprintf("RESULTADO;CORRECTA:%s;PUNTOS_J1:%d", correctLetter, correctJ1)
	}
	return fmt.Sprintf("RESULTADO;CORRECTA:%s;PUNTOS_J1:%d;PUNTOS_J2:%d", correctLetter, correctJ1, *correctJ2)
}

func SoloGameOver(correct, totalQuestions, pointsAwarded int) string {
	return fmt.Sprintf("FIN_PARTIDA;PUNTOS:%d;TOTAL_PREGUNTAS:%d;PUNTOS_GANADOS:%d",
		correct, totalQuestions, pointsAwarded)
}

// Outcome labels for multiplayer endings.
const (
	OutcomeWinner = "GANADOR"
	OutcomeLoser  = "PERDEDOR"
	OutcomeTie    = "EMPATE"
)

func MultiplayerGameOver(outcome string, correct, opponentCorrect, pointsAwarded int) string {
	if outcome == OutcomeTie {
		return fmt.Sprintf("FIN_PARTIDA;RESULTADO:EMPATE;PUNTOS:%d;PUNTOS_GANADOS:%d", correct, pointsAwarded)
	}
	return fmt.Sprintf("FIN_PARTIDA;RESULTADO:%s;PUNTOS:%d;OPONENTE_PUNTOS:%d;PUNTOS_GANADOS:%d",
		outcome, correct, opponentCorrect, pointsAwarded)
}

func ErrorMessage(msg string) string {
	return "ERROR;" + msg
}
