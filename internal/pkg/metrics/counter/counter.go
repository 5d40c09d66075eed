// Package counter buffers menu popularity increments in Redis and flushes
// them to menu_items in batches.
package counter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/internal/pkg/cache"
	"github.com/ManuelReschke/BaanBox/internal/pkg/database"
)

const (
	menuOrdersKey = "menu:counters:orders"
	menuViewsKey  = "menu:counters:views"
)

// viewWeight and orderWeight decide how much a page view or an ordered
// portion moves a dish up the menu.
const (
	viewWeight  = 1
	orderWeight = 10
)

// AddMenuView records a view of a dish detail page.
func AddMenuView(ctx context.Context, menuID uint) error {
	return incr(ctx, cache.GetClient(), menuViewsKey, menuID, 1)
}

// AddMenuOrder records qty ordered portions of a dish.
func AddMenuOrder(ctx context.Context, menuID uint, qty int) error {
	if qty <= 0 {
		return nil
	}
	return incr(ctx, cache.GetClient(), menuOrdersKey, menuID, int64(qty))
}

func incr(ctx context.Context, rdb *redis.Client, key string, id uint, by int64) error {
	return rdb.HIncrBy(ctx, key, strconv.FormatUint(uint64(id), 10), by).Err()
}

// FlushAll moves every pending counter into menu_items.popularity.
func FlushAll() error {
	return Flush(context.Background(), cache.GetClient(), database.GetDB())
}

func Flush(ctx context.Context, rdb *redis.Client, db *gorm.DB) error {
	views, err := drain(ctx, rdb, menuViewsKey)
	if err != nil {
		return err
	}
	orders, err := drain(ctx, rdb, menuOrdersKey)
	if err != nil {
		return err
	}

	incs := make(map[uint64]int64, len(views)+len(orders))
	for id, n := range views {
		incs[id] += n * viewWeight
	}
	for id, n := range orders {
		incs[id] += n * orderWeight
	}
	return applyIncrements(ctx, db, "menu_items", "popularity", incs)
}

// drain moves the hash to a temporary key with RENAME so increments that
// arrive while flushing land in a fresh hash.
func drain(ctx context.Context, rdb *redis.Client, key string) (map[uint64]int64, error) {
	tmpKey := fmt.Sprintf("%s:tmp:%d", key, time.Now().UnixNano())
	if err := rdb.Rename(ctx, key, tmpKey).Err(); err != nil {
		if errors.Is(err, redis.Nil) || strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil, nil
		}
		return nil, err
	}
	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]int64, len(data))
	for k, v := range data {
		id, perr := strconv.ParseUint(k, 10, 64)
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if perr != nil || ierr != nil || inc == 0 {
			continue
		}
		out[id] += inc
	}
	return out, nil
}

// applyIncrements issues one UPDATE ... SET col = col + CASE id WHEN ... END.
func applyIncrements(ctx context.Context, db *gorm.DB, table, column string, incs map[uint64]int64) error {
	if len(incs) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(incs))
	for id := range incs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	args := make([]interface{}, 0, len(ids)*3)
	fmt.Fprintf(&b, "UPDATE %s SET %s = %s + CASE id", table, column, column)
	for _, id := range ids {
		b.WriteString(" WHEN ? THEN ?")
		args = append(args, id, incs[id])
	}
	b.WriteString(" ELSE 0 END WHERE id IN (")
	for i, id := range ids {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
		args = append(args, id)
	}
	b.WriteString(")")

	return db.WithContext(ctx).Exec(b.String(), args...).Error
}

// StartFlusher flushes every interval until ctx is done.
func StartFlusher(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				if err := FlushAll(); err != nil {
					log.Warnf("[Counter] final flush failed: %v", err)
				}
				return
			case <-ticker.C:
				if err := FlushAll(); err != nil {
					log.Warnf("[Counter] flush failed: %v", err)
				}
			}
		}
	}()
}
