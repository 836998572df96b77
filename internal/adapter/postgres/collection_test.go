package postgres

import (
	"strings"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbmproject/kbm-backend/internal/domain"
	"github.com/kbmproject/kbm-backend/internal/query"
)

func testUserCollection() *Collection[domain.User] {
	return NewCollection[domain.User](nil, Source{
		Table:   "users",
		Columns: []string{"id", "name"},
		Where:   sq.Eq{"deleted_at": nil},
	}, func(row pgx.CollectableRow) (domain.User, error) {
		var u domain.User
		err := row.Scan(&u.ID, &u.Name)
		return u, err
	})
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"50%", `50\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeLike(tt.in))
	}
}

func TestCollection_FilterAndOrderSQL(t *testing.T) {
	t.Parallel()

	c := testUserCollection().
		Filter("o'neil%", query.UserPolicy.FilterableColumns())
	col, ok := query.UserPolicy.Column("email")
	require.True(t, ok)
	ordered := c.OrderBy(col, domain.SortDesc, query.UserPolicy).(*Collection[domain.User])

	sql, args, err := ordered.SQL(20, 10)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, name FROM users WHERE deleted_at IS NULL AND (username ILIKE $1 OR name ILIKE $2 OR email ILIKE $3) ORDER BY email DESC, id ASC LIMIT 10 OFFSET 20",
		sql,
	)
	assert.Equal(t, []any{`%o'neil\%%`, `%o'neil\%%`, `%o'neil\%%`}, args)
	assert.NotContains(t, sql, "o'neil")
}

func TestCollection_IsImmutable(t *testing.T) {
	t.Parallel()

	base := testUserCollection()
	_ = base.Filter("x", query.UserPolicy.FilterableColumns())

	sql, _, err := base.SQL(0, 5)
	require.NoError(t, err)
	assert.False(t, strings.Contains(sql, "ILIKE"))
}

func TestCollection_OrderByUnknownColumnFailsSlice(t *testing.T) {
	t.Parallel()

	c := testUserCollection().OrderBy(query.Column[domain.User]{Name: "bogus"}, domain.SortAsc, query.UserPolicy)

	_, err := c.Slice(t.Context(), 0, 10)
	assert.Error(t, err)
}
