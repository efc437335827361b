package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var rateLimitClient *redis.Client

// InitRedisRateLimiter подключает redis для лимитера.
// Пустой адрес оставляет лимитер выключенным.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		log.Println("rate limiter: redis не настроен, лимиты выключены")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("rate limiter: redis недоступен (%v), лимиты выключены", err)
		return
	}

	rateLimitClient = client
	log.Printf("rate limiter: redis подключен addr=%s", addr)
}

// RateLimit ограничивает число запросов с одного IP в скользящем окне.
// Без redis превращается в no-op, чтобы не ронять прод при сбое инфраструктуры.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rateLimitClient == nil {
			c.Next()
			return
		}

		key := "rl:" + c.FullPath() + ":" + c.ClientIP()
		ctx := c.Request.Context()

		count, err := rateLimitClient.Incr(ctx, key).Result()
		if err != nil {
			// redis отвалился на лету - пропускаем, не блокируем трафик
			c.Next()
			return
		}
		if count == 1 {
			rateLimitClient.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "слишком много запросов"})
			return
		}
		c.Next()
	}
}
