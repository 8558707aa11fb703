// Package cache keeps read-mostly schedule records in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/schedule"
)

// ScheduleCache is a read-through cache in front of a CalendarSource.
// Redis failures degrade to reading the source; they are logged, never
// returned. A nil redis client turns the cache into a pass-through.
type ScheduleCache struct {
	rdb    *redis.Client
	source schedule.CalendarSource
	ttl    time.Duration
	log    *zerolog.Logger
}

func NewScheduleCache(
	rdb *redis.Client,
	source schedule.CalendarSource,
	ttl time.Duration,
	log *zerolog.Logger,
) *ScheduleCache {
	return &ScheduleCache{rdb: rdb, source: source, ttl: ttl, log: log}
}

func calendarKey(barbershopID uint) string {
	return fmt.Sprintf("schedule:calendar:%d", barbershopID)
}

func (c *ScheduleCache) LoadCalendar(ctx context.Context, barbershopID uint) (*schedule.Calendar, error) {
	if c.rdb == nil {
		return c.source.LoadCalendar(ctx, barbershopID)
	}

	key := calendarKey(barbershopID)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cal schedule.Calendar
		if jsonErr := json.Unmarshal(raw, &cal); jsonErr == nil {
			return &cal, nil
		}
		c.log.Warn().Str("key", key).Msg("discarding unreadable cached calendar")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("schedule cache read failed")
	}

	cal, err := c.source.LoadCalendar(ctx, barbershopID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(cal); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("schedule cache write failed")
		}
	}
	return cal, nil
}

// Invalidate drops the cached calendar of a barbershop. Every schedule
// write calls it.
func (c *ScheduleCache) Invalidate(ctx context.Context, barbershopID uint) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, calendarKey(barbershopID)).Err(); err != nil {
		c.log.Warn().Err(err).Uint("barbershop_id", barbershopID).Msg("schedule cache invalidation failed")
	}
}

var _ schedule.CalendarSource = (*ScheduleCache)(nil)
