package geo

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/ride-hailing/internal/models"
)

// RedisIndex implements Index on Redis GEO commands so captain presence
// survives API restarts and is shared with the location consumer process.
type RedisIndex struct {
	client *redis.Client
	key    string
	ctx    context.Context
}

func NewRedisIndex(addr, password, key string) *RedisIndex {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisIndex{client: c, key: key, ctx: context.Background()}
}

func (r *RedisIndex) Upsert(c models.Captain) {
	_, _ = r.client.GeoAdd(r.ctx, r.key, &redis.GeoLocation{Longitude: c.Loc.Lng, Latitude: c.Loc.Lat, Name: c.ID}).Result()
	_ = r.client.HSet(r.ctx, metaKey(c.ID), map[string]interface{}{
		"rating":  strconv.FormatFloat(c.Rating, 'f', -1, 64),
		"online":  strconv.FormatBool(c.Online),
		"updated": time.Now().Format(time.RFC3339),
	}).Err()
}

func (r *RedisIndex) Remove(captainID string) {
	_ = r.client.ZRem(r.ctx, r.key, captainID).Err()
	_ = r.client.Del(r.ctx, metaKey(captainID)).Err()
}

func (r *RedisIndex) Nearby(lat, lng, radiusMeters float64, limit int) []models.Captain {
	res, err := r.client.GeoRadius(r.ctx, r.key, lng, lat, &redis.GeoRadiusQuery{
		Radius: radiusMeters, Unit: "m", WithCoord: true, WithDist: true, Count: limit, Sort: "ASC",
	}).Result()
	if err != nil {
		return nil
	}
	out := make([]models.Captain, 0, len(res))
	for _, g := range res {
		c := models.Captain{ID: g.Name}
		c.Loc.Lat = g.Latitude
		c.Loc.Lng = g.Longitude
		if m, err := r.client.HGetAll(r.ctx, metaKey(g.Name)).Result(); err == nil {
			if v, ok := m["rating"]; ok {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					c.Rating = f
				}
			}
			if v, ok := m["online"]; ok {
				c.Online = v == "true"
			}
		}
		if !c.Online {
			continue
		}
		out = append(out, c)
	}
	return out
}

func metaKey(id string) string { return "captain:meta:" + id }
