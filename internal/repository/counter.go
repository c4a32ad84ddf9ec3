package repository

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ParticipantCounter entrega la secuencia de registro (base 0) que decide el
// grupo de contrabalanceo. La lectura del contador y el append del
// participante deben quedar serializados por el caller (ver StudyService) o
// por la atomicidad del backend.
type ParticipantCounter interface {
	Next(ctx context.Context) (int64, error)
}

// RepoCounter deriva la secuencia del largo de la coleccion de
// participantes. Requiere que el caller sostenga un lock de proceso entre
// Next y el Create subsecuente.
type RepoCounter struct {
	participants ParticipantRepository
}

func NewRepoCounter(participants ParticipantRepository) *RepoCounter {
	return &RepoCounter{participants: participants}
}

func (c *RepoCounter) Next(ctx context.Context) (int64, error) {
	return c.participants.Count(ctx)
}

// RedisCounter usa INCR, atomico entre procesos; sirve cuando corre mas de
// una instancia contra el mismo store.
type RedisCounter struct {
	client *redis.Client
	key    string
}

func NewRedisCounter(client *redis.Client, key string) *RedisCounter {
	if strings.TrimSpace(key) == "" {
		key = "study:participants:seq"
	}
	return &RedisCounter{client: client, key: key}
}

func (c *RedisCounter) Next(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	val, err := c.client.Incr(ctx, c.key).Result()
	if err != nil {
		return 0, err
	}
	// INCR devuelve el nuevo total; la secuencia es base 0.
	return val - 1, nil
}
