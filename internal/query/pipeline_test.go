package query

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbmproject/kbm-backend/internal/domain"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func orgs(names ...string) []domain.Organization {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Organization, len(names))
	for i, n := range names {
		out[i] = domain.Organization{
			ID:        uuid.New(),
			Name:      n,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

func names(items []domain.Organization) []string {
	out := make([]string, len(items))
	for i, o := range items {
		out[i] = o.Name
	}
	return out
}

// failingCollection fails Slice for the first failures calls.
type failingCollection[T any] struct {
	Collection[T]
	failures *int
	orders   *[]string
}

func (c failingCollection[T]) Filter(term string, cols []Column[T]) Collection[T] {
	return failingCollection[T]{c.Collection.Filter(term, cols), c.failures, c.orders}
}

func (c failingCollection[T]) OrderBy(col Column[T], dir domain.SortDirection, p *Policy[T]) Collection[T] {
	*c.orders = append(*c.orders, col.Name)
	return failingCollection[T]{c.Collection.OrderBy(col, dir, p), c.failures, c.orders}
}

func (c failingCollection[T]) Slice(ctx context.Context, offset, limit int) ([]T, error) {
	if *c.failures > 0 {
		*c.failures--
		return nil, errors.New("connection reset")
	}
	return c.Collection.Slice(ctx, offset, limit)
}

// ---------------------------------------------------------------------------
// Filter
// ---------------------------------------------------------------------------

func TestPipeline_Filter_IdentityLaw(t *testing.T) {
	t.Parallel()

	p := NewPipeline(OrganizationPolicy, slog.Default())
	c := NewSliceCollection(orgs("Alpha Corp", "Beta Ltd"))

	for _, search := range []string{"", " ", "\t\n"} {
		assert.Same(t, c, p.Filter(c, search), "search %q", search)
	}
}

func TestPipeline_Filter_NilCollection(t *testing.T) {
	t.Parallel()

	p := NewPipeline(OrganizationPolicy, slog.Default())

	assert.Nil(t, p.Filter(nil, "x"))
	assert.Nil(t, p.Order(context.Background(), nil, "name", "asc"))

	res, err := p.Execute(context.Background(), nil, domain.QuerySpec{Search: "x", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.Total)
}

func TestPipeline_Filter_CaseInsensitiveAnyColumn(t *testing.T) {
	t.Parallel()

	addr := "12 Beta Street"
	data := orgs("Alpha Corp", "Beta Ltd", "Gamma Inc")
	data[2].Address = &addr

	p := NewPipeline(OrganizationPolicy, slog.Default())
	res, err := p.Execute(context.Background(), NewSliceCollection(data),
		domain.QuerySpec{Search: "BETA", OrderBy: "name", Page: 1, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, []string{"Beta Ltd", "Gamma Inc"}, names(res.Items))
	assert.Equal(t, 2, res.Total)
}

func TestPipeline_Filter_NullFieldsDoNotMatch(t *testing.T) {
	t.Parallel()

	p := NewPipeline(OrganizationPolicy, slog.Default())
	res, err := p.Execute(context.Background(), NewSliceCollection(orgs("Alpha Corp")),
		domain.QuerySpec{Search: "null", Page: 1, PageSize: 10})

	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

// ---------------------------------------------------------------------------
// Scenario
// ---------------------------------------------------------------------------

func TestPipeline_AlphaBetaGamma(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	data := orgs("Gamma Inc", "Alpha Corp", "Beta Ltd")
	p := NewPipeline(OrganizationPolicy, slog.Default())

	filtered := p.Filter(NewSliceCollection(data), "beta")
	items, err := p.Page(ctx, p.Order(ctx, filtered, "name", "asc"), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta Ltd"}, names(items))

	ordered := p.Order(ctx, NewSliceCollection(data), "name", "asc")
	items, err = p.Page(ctx, ordered, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gamma Inc"}, names(items))
}

// ---------------------------------------------------------------------------
// Order
// ---------------------------------------------------------------------------

func TestPipeline_Order_Direction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := NewPipeline(OrganizationPolicy, slog.Default())
	c := NewSliceCollection(orgs("b", "a", "c"))

	tests := []struct {
		direction string
		want      []string
	}{
		{"desc", []string{"c", "b", "a"}},
		{"DeSc", []string{"c", "b", "a"}},
		{"asc", []string{"a", "b", "c"}},
		{"", []string{"a", "b", "c"}},
		{"sideways", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.direction, func(t *testing.T) {
			t.Parallel()
			items, err := p.Page(ctx, p.Order(ctx, c, "name", tt.direction), 1, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(items))
		})
	}
}

func TestPipeline_Order_InvalidColumnFallsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	data := orgs("c", "a", "b")
	// created_at ties between two entities are broken by key.
	data[2].CreatedAt = data[1].CreatedAt
	if data[1].ID.String() > data[2].ID.String() {
		data[1], data[2] = data[2], data[1]
	}
	want := []string{data[0].Name, data[1].Name, data[2].Name}

	for _, column := range []string{"", "nope", "Name", "name; DROP TABLE organizations", "deleted_at", "id"} {
		t.Run(column, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			var rejected []string
			p := NewPipeline(OrganizationPolicy, testLogger(&buf),
				WithRejectHook(func(entity, col string) { rejected = append(rejected, entity+"."+col) }))

			res, err := p.Execute(ctx, NewSliceCollection(data),
				domain.QuerySpec{OrderBy: column, Page: 1, PageSize: 10})
			require.NoError(t, err)

			assert.Equal(t, want, names(res.Items))
			assert.Equal(t, DefaultOrderColumn, res.OrderColumn)
			assert.True(t, res.Rejected)
			assert.Equal(t, column, res.RejectedColumn)
			assert.Equal(t, []string{domain.TableOrganizations + "." + column}, rejected)
			assert.Contains(t, buf.String(), `"msg":"order column rejected"`)
			assert.Contains(t, buf.String(), `"level":"WARN"`)
		})
	}
}

func TestPipeline_Order_ValidColumnNotRejected(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPipeline(OrganizationPolicy, testLogger(&buf))

	res, err := p.Execute(context.Background(), NewSliceCollection(orgs("a")),
		domain.QuerySpec{OrderBy: "address", Page: 1, PageSize: 10})
	require.NoError(t, err)

	assert.False(t, res.Rejected)
	assert.Equal(t, "address", res.OrderColumn)
	assert.Empty(t, buf.String())
}

func TestPipeline_Order_Deterministic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	data := orgs("same", "same", "same", "same", "same")
	p := NewPipeline(OrganizationPolicy, slog.Default())

	first, err := p.Page(ctx, p.Order(ctx, NewSliceCollection(data), "name", "asc"), 1, 10)
	require.NoError(t, err)
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].ID.String(), first[i].ID.String())
	}

	reversed := make([]domain.Organization, len(data))
	for i := range data {
		reversed[len(data)-1-i] = data[i]
	}
	second, err := p.Page(ctx, p.Order(ctx, NewSliceCollection(reversed), "name", "asc"), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// ---------------------------------------------------------------------------
// Page
// ---------------------------------------------------------------------------

func TestPipeline_PartitionLaw(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var raw []string
	for i := 0; i < 23; i++ {
		raw = append(raw, fmt.Sprintf("org-%02d", (i*7)%23))
	}
	data := orgs(raw...)
	p := NewPipeline(OrganizationPolicy, slog.Default())

	for _, search := range []string{"", "org-1", "-0"} {
		for pageSize := 1; pageSize <= 10; pageSize++ {
			all, err := p.Execute(ctx, NewSliceCollection(data),
				domain.QuerySpec{Search: search, OrderBy: "name", Page: 1, PageSize: len(data)})
			require.NoError(t, err)

			var joined []domain.Organization
			for page := 1; ; page++ {
				res, err := p.Execute(ctx, NewSliceCollection(data),
					domain.QuerySpec{Search: search, OrderBy: "name", Page: page, PageSize: pageSize})
				require.NoError(t, err)
				require.LessOrEqual(t, len(res.Items), pageSize)
				assert.Equal(t, all.Total, res.Total)
				if len(res.Items) == 0 {
					break
				}
				joined = append(joined, res.Items...)
			}
			assert.Equal(t, all.Items, joined, "search %q page size %d", search, pageSize)
		}
	}
}

func TestPipeline_Page_BeyondEnd(t *testing.T) {
	t.Parallel()

	p := NewPipeline(OrganizationPolicy, slog.Default())
	items, err := p.Page(context.Background(), NewSliceCollection(orgs("a", "b")), 5, 10)

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestPipeline_Page_OffsetOverflowIsEmpty(t *testing.T) {
	t.Parallel()

	p := NewPipeline(OrganizationPolicy, slog.Default(), WithMaxPageSize(100))
	res, err := p.Execute(context.Background(),
		NewSliceCollection(orgs("Alpha Corp", "Beta Ltd", "Gamma Inc")),
		domain.QuerySpec{OrderBy: "name", Page: 1<<62 + 1, PageSize: 4})

	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)

	items, err := p.Page(context.Background(), NewSliceCollection(orgs("a", "b")), math.MaxInt, 3)
	require.NoError(t, err)
	assert.Empty(t, items)
}

// ---------------------------------------------------------------------------
// Execute
// ---------------------------------------------------------------------------

func TestPipeline_Execute_InvalidSpec(t *testing.T) {
	t.Parallel()

	p := NewPipeline(OrganizationPolicy, slog.Default(), WithMaxPageSize(50))

	for _, spec := range []domain.QuerySpec{
		{Page: 0, PageSize: 10},
		{Page: 1, PageSize: 0},
		{Page: 1, PageSize: 51},
	} {
		_, err := p.Execute(context.Background(), NewSliceCollection(orgs("a")), spec)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestPipeline_Execute_RetriesWithDefaultColumn(t *testing.T) {
	t.Parallel()

	failures := 1
	var orders []string
	var retried []string
	c := failingCollection[domain.Organization]{NewSliceCollection(orgs("b", "a")), &failures, &orders}
	p := NewPipeline(OrganizationPolicy, slog.Default(),
		WithRetryHook(func(entity, col string) { retried = append(retried, col) }))

	res, err := p.Execute(context.Background(), c, domain.QuerySpec{OrderBy: "name", Page: 1, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names(res.Items))
	assert.Equal(t, DefaultOrderColumn, res.OrderColumn)
	assert.Equal(t, []string{"name", DefaultOrderColumn}, orders)
	assert.Equal(t, []string{"name"}, retried)
}

func TestPipeline_Execute_SecondFailureIsExecutionError(t *testing.T) {
	t.Parallel()

	failures := 2
	var orders []string
	c := failingCollection[domain.Organization]{NewSliceCollection(orgs("a")), &failures, &orders}
	p := NewPipeline(OrganizationPolicy, slog.Default())

	_, err := p.Execute(context.Background(), c, domain.QuerySpec{OrderBy: "name", Page: 1, PageSize: 10})

	require.ErrorIs(t, err, ErrQueryExecution)
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, domain.TableOrganizations, execErr.Entity)
	assert.Equal(t, "name", execErr.Column)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPipeline_Execute_PanickingComparatorRecovered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	broken := Column[item]{
		Name:      "rank",
		Orderable: true,
		Compare:   func(a, b item) int { panic("bad comparator") },
	}
	policy := MustPolicy("items", "key", itemKey, itemName, itemCreated, broken)
	p := NewPipeline(policy, slog.Default())

	data := []item{{Key: "2", Rank: 2}, {Key: "1", Rank: 1}}
	res, err := p.Execute(ctx, NewSliceCollection(data), domain.QuerySpec{OrderBy: "rank", Page: 1, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, DefaultOrderColumn, res.OrderColumn)
	assert.Equal(t, []item{{Key: "1", Rank: 1}, {Key: "2", Rank: 2}}, res.Items)
}

func TestPipeline_Execute_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(OrganizationPolicy, slog.Default())
	_, err := p.Execute(ctx, NewSliceCollection(orgs("a")), domain.QuerySpec{Page: 1, PageSize: 10})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrQueryExecution)
}

func TestPipeline_Execute_Users(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	users := []domain.User{
		{ID: uuid.New(), Username: "zed", Email: "zed@x.com", CreatedAt: base},
		{ID: uuid.New(), Username: "amy", Email: "amy@corp.com", CreatedAt: base.Add(time.Hour)},
		{ID: uuid.New(), Username: "bob", Email: "bob@corp.com", CreatedAt: base.Add(2 * time.Hour)},
	}
	p := NewPipeline(UserPolicy, slog.Default())

	res, err := p.Execute(context.Background(), NewSliceCollection(users),
		domain.QuerySpec{Search: "CORP", OrderBy: "email", Direction: "desc", Page: 1, PageSize: 10})

	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "bob", res.Items[0].Username)
	assert.Equal(t, "amy", res.Items[1].Username)
	assert.Equal(t, domain.SortDesc, res.Direction)
	assert.Equal(t, 2, res.Total)
}
