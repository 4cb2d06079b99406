package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Publisher 이벤트 발행 인터페이스
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Close() error
}

// Envelope 발행되는 모든 메시지의 공통 래퍼
type Envelope struct {
	Channel    string      `json:"channel"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// redisPublisher Redis Pub/Sub 기반 구현체
type redisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher Redis 연결을 확인한 뒤 Publisher를 생성합니다
func NewRedisPublisher(ctx context.Context, addr, password string, db int) (Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redis 연결 실패: %w", err)
	}

	return &redisPublisher{client: client}, nil
}

// Publish 메시지를 Envelope로 감싸 JSON으로 발행합니다
func (r *redisPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(Envelope{
		Channel:    channel,
		OccurredAt: time.Now().UTC(),
		Data:       message,
	})
	if err != nil {
		return fmt.Errorf("메시지 직렬화 실패: %w", err)
	}

	return r.client.Publish(ctx, channel, payload).Err()
}

// Close Redis 클라이언트 종료
func (r *redisPublisher) Close() error {
	return r.client.Close()
}

// NoopPublisher Redis가 비활성화된 환경에서 사용하는 빈 구현체
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
