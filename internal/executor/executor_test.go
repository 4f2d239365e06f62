package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coredb/coredb/internal/kv"
	"github.com/coredb/coredb/internal/model"
	"github.com/coredb/coredb/internal/planner"
	"github.com/coredb/coredb/internal/query"
)

func mustParse(t *testing.T, sql string) *query.ParsedQuery {
	t.Helper()
	q, err := query.Parse(sql)
	require.NoError(t, err)
	return q
}

func TestExecutorInsertSelectRoundTrip(t *testing.T) {
	store := kv.NewMemoryEngine()
	pl := planner.New()
	ex := New(store, nil)

	insertQ := mustParse(t, "INSERT INTO user (name, age) VALUES ('Alice', 30)")
	plan, err := pl.Plan(insertQ)
	require.NoError(t, err)
	res, err := ex.Execute(plan, insertQ)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.RowsAffected)

	selectQ := mustParse(t, "SELECT * FROM user")
	plan, err = pl.Plan(selectQ)
	require.NoError(t, err)
	res, err = ex.Execute(plan, selectQ)
	require.NoError(t, err)
	require.Equal(t, 1, res.RowCount())
}

func TestExecutorSelectWithFilterAndOrder(t *testing.T) {
	store := kv.NewMemoryEngine()
	ex := New(store, nil)
	pl := planner.New()

	for _, age := range []int64{30, 25, 40} {
		n := model.NewNode("user", nil)
		n.Set("age", model.Int(age))
		require.NoError(t, store.CreateNode(n))
	}

	q := mustParse(t, "SELECT * FROM user WHERE age > 26 ORDER BY age DESC")
	plan, err := pl.Plan(q)
	require.NoError(t, err)
	res, err := ex.Execute(plan, q)
	require.NoError(t, err)
	require.Equal(t, 2, res.RowCount())
}

func TestExecutorUpdateAppliesPatch(t *testing.T) {
	store := kv.NewMemoryEngine()
	ex := New(store, nil)
	pl := planner.New()

	n := model.NewNode("user", nil)
	n.Set("age", model.Int(30))
	require.NoError(t, store.CreateNode(n))

	q := mustParse(t, "UPDATE user SET age = 31 WHERE id = '"+n.ID.String()+"'")
	plan, err := pl.Plan(q)
	require.NoError(t, err)
	res, err := ex.Execute(plan, q)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.RowsAffected)

	got, err := store.GetNode(n.ID)
	require.NoError(t, err)
	v, ok := got.Get("age")
	require.True(t, ok)
	age, _ := v.AsInt()
	assert.EqualValues(t, 31, age)
}

func TestExecutorDeleteCascadesEdges(t *testing.T) {
	store := kv.NewMemoryEngine()
	ex := New(store, nil)
	pl := planner.New()

	a := model.NewNode("user", nil)
	b := model.NewNode("user", nil)
	require.NoError(t, store.CreateNode(a))
	require.NoError(t, store.CreateNode(b))
	edge := model.NewEdge(a.ID, b.ID, "KNOWS", nil)
	require.NoError(t, store.CreateEdge(edge))

	q := mustParse(t, "DELETE FROM user WHERE id = '"+a.ID.String()+"'")
	plan, err := pl.Plan(q)
	require.NoError(t, err)
	res, err := ex.Execute(plan, q)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.RowsAffected)

	_, err = store.GetEdge(edge.ID)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestExecutorSelectProjectsColumns(t *testing.T) {
	store := kv.NewMemoryEngine()
	ex := New(store, nil)
	pl := planner.New()

	n := model.NewNode("user", nil)
	n.Set("name", model.String("Alice"))
	n.Set("age", model.Int(30))
	require.NoError(t, store.CreateNode(n))

	q := mustParse(t, "SELECT name FROM user")
	plan, err := pl.Plan(q)
	require.NoError(t, err)
	res, err := ex.Execute(plan, q)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"id", "type", "name"}, res.Columns)
}

func TestExecutorCachesSelectAndInvalidatesOnWrite(t *testing.T) {
	store := kv.NewMemoryEngine()
	cache := NewQueryCache(10, 0)
	ex := New(store, cache)
	pl := planner.New()

	n := model.NewNode("user", nil)
	require.NoError(t, store.CreateNode(n))

	q := mustParse(t, "SELECT * FROM user")
	plan, err := pl.Plan(q)
	require.NoError(t, err)
	_, err = ex.Execute(plan, q)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	insertQ := mustParse(t, "INSERT INTO user (name) VALUES ('Bob')")
	insertPlan, err := pl.Plan(insertQ)
	require.NoError(t, err)
	_, err = ex.Execute(insertPlan, insertQ)
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())
}
