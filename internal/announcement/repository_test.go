package announcement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListQuery(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("Public visibility", func(t *testing.T) {
		sql, args, err := listQuery(publicWhere(now), Filter{}).ToSql()
		require.NoError(t, err)

		assert.Contains(t, sql, "FROM public.announcements")
		assert.Contains(t, sql, "WHERE (status = $1 AND (expires_at IS NULL OR expires_at > $2))")
		assert.Contains(t, sql, "ORDER BY created_at DESC, id DESC")
		assert.Contains(t, sql, "LIMIT 20 OFFSET 0")
		assert.Equal(t, []any{string(StatusPublished), now}, args)
	})

	t.Run("Filters and paging", func(t *testing.T) {
		filter := Filter{Category: CategoryHealth, Keyword: "flood", Page: 3, PageSize: 5}
		sql, args, err := listQuery(publicWhere(now), filter).ToSql()
		require.NoError(t, err)

		assert.Contains(t, sql, "AND category = $3")
		assert.Contains(t, sql, "AND (title ILIKE $4 OR content ILIKE $5)")
		assert.Contains(t, sql, "LIMIT 5 OFFSET 10")
		assert.Equal(t, []any{string(StatusPublished), now, string(CategoryHealth), "%flood%", "%flood%"}, args)
	})

	t.Run("Provider list", func(t *testing.T) {
		where := providerWhere("provider-a", Filter{Status: StatusDraft})
		sql, args, err := listQuery(where, Filter{}).ToSql()
		require.NoError(t, err)

		assert.Contains(t, sql, "WHERE (provider_id = $1 AND status = $2)")
		assert.NotContains(t, sql, "expires_at >")
		assert.Equal(t, []any{"provider-a", string(StatusDraft)}, args)
	})
}
