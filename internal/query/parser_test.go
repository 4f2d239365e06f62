package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coredb/coredb/internal/model"
)

func TestParseSelectStar(t *testing.T) {
	q, err := Parse("SELECT * FROM user WHERE age > 28")
	require.NoError(t, err)
	assert.Equal(t, OpSelect, q.Operation)
	assert.Equal(t, "user", q.Target)
	assert.Equal(t, []string{"*"}, q.Columns)
	require.Len(t, q.Conditions, 1)
	assert.Equal(t, "age", q.Conditions[0].Column)
	assert.Equal(t, OpGt, q.Conditions[0].Operator)
	i, ok := q.Conditions[0].Value.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(28), i)
}

func TestParseSelectColumnsAndOrderLimitOffset(t *testing.T) {
	q, err := Parse("SELECT name, age FROM user ORDER BY age DESC LIMIT 10 OFFSET 5")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, q.Columns)
	require.Len(t, q.OrderBy, 1)
	assert.Equal(t, "age", q.OrderBy[0].Column)
	assert.True(t, q.OrderBy[0].Descending)
	require.NotNil(t, q.Limit)
	assert.Equal(t, uint64(10), *q.Limit)
	require.NotNil(t, q.Offset)
	assert.Equal(t, uint64(5), *q.Offset)
}

func TestParseWhereAndConjunction(t *testing.T) {
	q, err := Parse("SELECT * FROM user WHERE age > 18 AND name = 'Alice'")
	require.NoError(t, err)
	require.Len(t, q.Conditions, 2)
	assert.Equal(t, OpGt, q.Conditions[0].Operator)
	assert.Equal(t, OpEq, q.Conditions[1].Operator)
	s, _ := q.Conditions[1].Value.AsString()
	assert.Equal(t, "Alice", s)
}

func TestParseWhereIsNullAndIsNotNull(t *testing.T) {
	q, err := Parse("SELECT * FROM user WHERE email IS NULL")
	require.NoError(t, err)
	assert.Equal(t, OpIsNull, q.Conditions[0].Operator)

	q, err = Parse("SELECT * FROM user WHERE email IS NOT NULL")
	require.NoError(t, err)
	assert.Equal(t, OpIsNotNull, q.Conditions[0].Operator)
}

func TestParseWhereLikeTranslatesWildcards(t *testing.T) {
	q, err := Parse("SELECT * FROM user WHERE name LIKE 'A%'")
	require.NoError(t, err)
	assert.Equal(t, OpLike, q.Conditions[0].Operator)
	pattern, _ := q.Conditions[0].Value.AsString()
	assert.Equal(t, "^A.*$", pattern)
}

func TestParseWhereIn(t *testing.T) {
	q, err := Parse("SELECT * FROM user WHERE age IN (18, 21, 30)")
	require.NoError(t, err)
	assert.Equal(t, OpIn, q.Conditions[0].Operator)
	arr, ok := q.Conditions[0].Value.AsArray()
	require.True(t, ok)
	assert.Len(t, arr, 3)
}

func TestParseOrRejected(t *testing.T) {
	_, err := Parse("SELECT * FROM user WHERE age > 18 OR name = 'Bob'")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParseSubqueryRejected(t *testing.T) {
	_, err := Parse("SELECT * FROM (SELECT * FROM user)")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParseJoinRejected(t *testing.T) {
	_, err := Parse("SELECT * FROM user JOIN orders ON user.id = orders.user_id")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParseAggregateRejected(t *testing.T) {
	_, err := Parse("SELECT COUNT(*) FROM user")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParseInsert(t *testing.T) {
	q, err := Parse("INSERT INTO user (name, age) VALUES ('Alice', 30)")
	require.NoError(t, err)
	assert.Equal(t, OpInsert, q.Operation)
	assert.Equal(t, "user", q.Target)
	require.NotNil(t, q.Data)
	name, _ := q.Data.Get("name")
	s, _ := name.AsString()
	assert.Equal(t, "Alice", s)
	age, _ := q.Data.Get("age")
	i, _ := age.AsInt()
	assert.Equal(t, int64(30), i)
}

func TestParseInsertMultiRowRejected(t *testing.T) {
	_, err := Parse("INSERT INTO user (name) VALUES ('Alice'), ('Bob')")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParseInsertColumnValueMismatch(t *testing.T) {
	_, err := Parse("INSERT INTO user (name, age) VALUES ('Alice')")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestParseUpdate(t *testing.T) {
	q, err := Parse("UPDATE user SET age = 31, name = 'Alicia' WHERE id = '1'")
	require.NoError(t, err)
	assert.Equal(t, OpUpdate, q.Operation)
	assert.Equal(t, "user", q.Target)
	age, _ := q.Data.Get("age")
	i, _ := age.AsInt()
	assert.Equal(t, int64(31), i)
	require.Len(t, q.Conditions, 1)
}

func TestParseDelete(t *testing.T) {
	q, err := Parse("DELETE FROM user WHERE age < 18")
	require.NoError(t, err)
	assert.Equal(t, OpDelete, q.Operation)
	assert.Equal(t, "user", q.Target)
	require.Len(t, q.Conditions, 1)
	assert.Equal(t, OpLt, q.Conditions[0].Operator)
}

func TestParseDeleteWithoutWhere(t *testing.T) {
	q, err := Parse("DELETE FROM user")
	require.NoError(t, err)
	assert.Empty(t, q.Conditions)
}

func TestParseUnknownStatementFails(t *testing.T) {
	_, err := Parse("MERGE INTO user")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestParseGroupByRejected(t *testing.T) {
	_, err := Parse("SELECT name FROM user GROUP BY name")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestFromNodesColumnOrdering(t *testing.T) {
	n1 := model.NewNode("user", model.NewObject())
	n1.Set("name", model.String("Alice"))
	n1.Set("age", model.Int(30))

	result := FromNodes([]*model.Node{n1})
	assert.Equal(t, []string{"id", "type", "age", "name"}, result.Columns)
	require.Len(t, result.Rows, 1)
}

func TestFromNodesEmpty(t *testing.T) {
	result := FromNodes(nil)
	assert.True(t, result.IsEmpty())
}
