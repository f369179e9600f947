package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

// Parâmetros fixos da janela. Não são configuráveis por ambiente.
const (
	Window         = 60 * time.Second
	Capacity       = 60
	PruneThreshold = 10_000
)

// Key identifica o cliente (IP de origem, ou "unknown").
type Key string

// UnknownKey é usada quando nenhum header de origem está presente.
const UnknownKey Key = "unknown"

// Entry é o contador de uma chave dentro da janela corrente.
type Entry struct {
	Count   int64
	ResetAt time.Time
}

// Expired indica se a janela já terminou em `now` (ResetAt <= now).
func (e Entry) Expired(now time.Time) bool {
	return !e.ResetAt.After(now)
}

// CounterStore registra uma requisição da chave em `now` e devolve o estado
// resultante da janela.
//
// Semântica de janela fixa: se não existe entrada, ou a janela expirou, a
// entrada é substituída por {Count: 1, ResetAt: now+window}. Caso contrário
// Count é incrementado. O read-modify-write precisa ser atômico por chave.
type CounterStore interface {
	Hit(ctx context.Context, key Key, now time.Time, window time.Duration) (Entry, error)
}

type Decision struct {
	Allowed bool
	// Tracked é false quando não houve contagem (ex.: store indisponível).
	// Nesse caso nenhum header de rate limit deve ser emitido.
	Tracked bool

	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
