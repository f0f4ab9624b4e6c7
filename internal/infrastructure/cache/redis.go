package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jhoicas/Conversa-api/internal/application/ports"
	"github.com/jhoicas/Conversa-api/internal/domain/entity"
	"github.com/jhoicas/Conversa-api/pkg/config"
	"github.com/jhoicas/Conversa-api/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Asegura que RedisCache implementa los puertos de cache y eventos.
var _ ports.StatusCache = (*RedisCache)(nil)
var _ ports.EventPublisher = (*RedisCache)(nil)

const (
	statusKeyPrefix = "instance:status:"
	statusTTL       = 30 * time.Second
	eventsChannel   = "tenants:events"
)

// RedisCache cache de corta vida del estado de conexión por instancia y bus
// pub/sub de eventos de ciclo de vida de tenants. Todas las fallas del
// backend se loguean y degradan a miss / no-op: Redis acá nunca es crítico.
type RedisCache struct {
	client *redis.Client
	log    *logger.Logger
}

// New construye el cliente Redis y verifica conectividad.
func New(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisCache{client: client, log: log}, nil
}

// Close cierra la conexión subyacente.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetStatus devuelve el estado cacheado; miss o error -> ok=false.
func (c *RedisCache) GetStatus(ctx context.Context, instanceKey string) (entity.InstanceStatus, bool) {
	val, err := c.client.Get(ctx, statusKeyPrefix+instanceKey).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("instance_key", instanceKey).Msg("leer cache de estado")
		}
		return "", false
	}
	return entity.InstanceStatus(val), true
}

// SetStatus cachea el estado con TTL corto.
func (c *RedisCache) SetStatus(ctx context.Context, instanceKey string, status entity.InstanceStatus) {
	if err := c.client.Set(ctx, statusKeyPrefix+instanceKey, string(status), statusTTL).Err(); err != nil {
		c.log.Warn().Err(err).Str("instance_key", instanceKey).Msg("escribir cache de estado")
	}
}

// Invalidate elimina la entrada de la instancia.
func (c *RedisCache) Invalidate(ctx context.Context, instanceKey string) {
	if err := c.client.Del(ctx, statusKeyPrefix+instanceKey).Err(); err != nil {
		c.log.Warn().Err(err).Str("instance_key", instanceKey).Msg("invalidar cache de estado")
	}
}

// Publish publica el evento en el canal de tenants.
func (c *RedisCache) Publish(ctx context.Context, ev ports.TenantEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, eventsChannel, payload).Err()
}
