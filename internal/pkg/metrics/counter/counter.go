package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/onlypremiums/onlypremiums/internal/pkg/cache"
	"github.com/onlypremiums/onlypremiums/internal/pkg/database"
)

const (
	planViewsKey         = "plan:counters:views"
	checkoutStartedKey   = "checkout:counters:started"
	checkoutCompletedKey = "checkout:counters:completed"
)

// AddPlanView increments the pending view counter for a plan in Redis
func AddPlanView(planID string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, planViewsKey, planID, 1).Err()
}

// AddCheckoutStarted increments the checkout-started counter in Redis
func AddCheckoutStarted() error {
	ctx := context.Background()
	return cache.GetClient().Incr(ctx, checkoutStartedKey).Err()
}

// AddCheckoutCompleted increments the checkout-completed counter in Redis
func AddCheckoutCompleted() error {
	ctx := context.Background()
	return cache.GetClient().Incr(ctx, checkoutCompletedKey).Err()
}

// CheckoutCounters returns the current started/completed checkout counters
func CheckoutCounters() (started, completed int64) {
	ctx := context.Background()
	rdb := cache.GetClient()
	started, _ = rdb.Get(ctx, checkoutStartedKey).Int64()
	completed, _ = rdb.Get(ctx, checkoutCompletedKey).Int64()
	return started, completed
}

// FlushPlanViews flushes pending plan view counters to the database
func FlushPlanViews() error {
	return flushHashToTable(planViewsKey, "plans", "view_count")
}

// flushHashToTable drains a Redis hash atomically and applies batched increments.
// Uses RENAME to a temporary key for atomic drain without losing in-flight increments.
func flushHashToTable(redisKey, table, column string) error {
	ctx := context.Background()
	rdb := cache.GetClient()

	// Atomically move the hash to a temp key for draining
	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", redisKey, tmpKey).Err(); err != nil {
		// If key does not exist, nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		if err.Error() == "redis: nil" {
			return nil
		}
		return err
	}

	// Ensure cleanup of tmpKey even if later steps fail
	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	type pair struct {
		id  string
		inc int64
	}
	pairs := make([]pair, 0, len(data))
	for k, v := range data {
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		pairs = append(pairs, pair{id: k, inc: inc})
	}
	if len(pairs) == 0 {
		return nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].id < pairs[j].id })

	// UPDATE plans SET <column> = <column> + CASE id WHEN ? THEN ? ... END WHERE id IN ( ... )
	var builder strings.Builder
	args := make([]interface{}, 0, len(pairs)*3)
	builder.WriteString("UPDATE ")
	builder.WriteString(table)
	builder.WriteString(" SET ")
	builder.WriteString(column)
	builder.WriteString(" = ")
	builder.WriteString(column)
	builder.WriteString(" + CASE id ")
	for _, p := range pairs {
		builder.WriteString(" WHEN ? THEN ?")
		args = append(args, p.id, p.inc)
	}
	builder.WriteString(" END WHERE id IN (")
	for i, p := range pairs {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString("?")
		args = append(args, p.id)
	}
	builder.WriteString(")")

	sql := builder.String()
	db := database.GetDB()
	if err := db.Exec(sql, args...).Error; err != nil {
		return err
	}
	return nil
}
