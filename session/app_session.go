package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type AppSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAppSessionStore(rdb *redis.Client, ttl time.Duration) *AppSessionStore {
	return &AppSessionStore{rdb: rdb, ttl: ttl}
}

func (s *AppSessionStore) TTL() time.Duration { return s.ttl }

// AppSession 登录态；身份和管理员标记每次请求从库里重新加载
type AppSession struct {
	AccountID uint  `json:"aid"`
	IssuedAt  int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}

func key(id string) string { return fmt.Sprintf("app:sess:%s", id) }
func accountSetKey(aid uint) string {
	return "app:account_sessions:" + strconv.FormatUint(uint64(aid), 10)
}

func (s *AppSessionStore) Create(ctx context.Context, id string, aid uint) error {
	now := time.Now()
	b, err := json.Marshal(AppSession{
		AccountID: aid,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(id), b, s.ttl)
	pipe.SAdd(ctx, accountSetKey(aid), id)
	pipe.Expire(ctx, accountSetKey(aid), s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Get 返回 redis.Nil 表示会话不存在或已过期
func (s *AppSessionStore) Get(ctx context.Context, id string) (*AppSession, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var as AppSession
	if err := json.Unmarshal(b, &as); err != nil {
		return nil, err
	}
	return &as, nil
}

func (s *AppSessionStore) Delete(ctx context.Context, id string) error {
	as, _ := s.Get(ctx, id) // 忽略失败
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(id))
	if as != nil {
		pipe.SRem(ctx, accountSetKey(as.AccountID), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllForAccount 撤销账号的全部会话；except 非空时保留当前会话（改密码场景）
func (s *AppSessionStore) RevokeAllForAccount(ctx context.Context, aid uint, except string) error {
	ids, err := s.rdb.SMembers(ctx, accountSetKey(aid)).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		if sid == except {
			continue
		}
		pipe.Del(ctx, key(sid))
		pipe.SRem(ctx, accountSetKey(aid), sid)
	}
	if except == "" {
		pipe.Del(ctx, accountSetKey(aid))
	}
	_, err = pipe.Exec(ctx)
	return err
}
