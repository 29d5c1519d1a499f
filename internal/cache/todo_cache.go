package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	dom "todoapi/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefixList     = "todo:list:"
	keyPrefixSearch   = "todo:search:"
	keyPrefixOverview = "todo:overview:"
)

// TodoCache caches per-user list, search, and upcoming/overdue results in
// Redis. Keys are scoped by user id so invalidation never crosses owners.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached listing for the user and sort, or nil on miss.
// A cached empty result comes back as a non-nil empty slice.
func (c *TodoCache) GetList(ctx context.Context, userID int64, sort dom.Sort) ([]dom.Todo, error) {
	return c.getTodos(ctx, listKey(userID, sort))
}

// SetList stores the listing for the user and sort.
func (c *TodoCache) SetList(ctx context.Context, userID int64, sort dom.Sort, list []dom.Todo) error {
	return c.setTodos(ctx, listKey(userID, sort), list)
}

// GetSearch returns the cached search result for the term, or nil on miss.
func (c *TodoCache) GetSearch(ctx context.Context, userID int64, term string) ([]dom.Todo, error) {
	return c.getTodos(ctx, searchKey(userID, term))
}

// SetSearch stores the search result for the term.
func (c *TodoCache) SetSearch(ctx context.Context, userID int64, term string, list []dom.Todo) error {
	return c.setTodos(ctx, searchKey(userID, term), list)
}

// GetOverview returns the cached upcoming/overdue overview for the reference
// date, or nil on miss. Keying by date means a day's entry is never served
// after midnight.
func (c *TodoCache) GetOverview(ctx context.Context, userID int64, ref time.Time) (*dom.Overview, error) {
	b, err := c.rdb.Get(ctx, overviewKey(userID, ref)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ov dom.Overview
	if err := json.Unmarshal(b, &ov); err != nil {
		return nil, err
	}
	return &ov, nil
}

// SetOverview stores the upcoming/overdue overview for the reference date.
func (c *TodoCache) SetOverview(ctx context.Context, userID int64, ref time.Time, ov dom.Overview) error {
	b, err := json.Marshal(ov)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, overviewKey(userID, ref), b, c.ttl).Err()
}

// InvalidateUser removes every cached result for the user (cache
// invalidation on write).
func (c *TodoCache) InvalidateUser(ctx context.Context, userID int64) error {
	uid := strconv.FormatInt(userID, 10)
	patterns := []string{
		keyPrefixList + uid + ":*",
		keyPrefixSearch + uid + ":*",
		keyPrefixOverview + uid + ":*",
	}
	for _, pattern := range patterns {
		iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *TodoCache) getTodos(ctx context.Context, key string) ([]dom.Todo, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeTodos(b)
}

func (c *TodoCache) setTodos(ctx context.Context, key string, list []dom.Todo) error {
	b, err := encodeTodos(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

// encodeTodos marshals a result list, storing an empty result as [] rather
// than null so it still reads back as a cache hit.
func encodeTodos(list []dom.Todo) ([]byte, error) {
	if list == nil {
		list = []dom.Todo{}
	}
	return json.Marshal(list)
}

func decodeTodos(b []byte) ([]dom.Todo, error) {
	var list []dom.Todo
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []dom.Todo{}
	}
	return list, nil
}

func listKey(userID int64, sort dom.Sort) string {
	return keyPrefixList + strconv.FormatInt(userID, 10) + ":" + string(sort.By) + ":" + string(sort.Order)
}

// searchKey folds case (ILIKE matching is case-insensitive) but keeps the
// term otherwise verbatim: whitespace is significant to the query, so "milk"
// and " milk" must not share an entry.
func searchKey(userID int64, term string) string {
	return keyPrefixSearch + strconv.FormatInt(userID, 10) + ":" + strings.ToLower(term)
}

func overviewKey(userID int64, ref time.Time) string {
	return keyPrefixOverview + strconv.FormatInt(userID, 10) + ":" + ref.Format("2006-01-02")
}
