package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCatalog_FindByID(t *testing.T) {
	t.Parallel()

	c := NewCatalog([]OperationDescriptor{
		{ID: "getUser", HTTPMethod: "GET", Path: "/users/{id}"},
		{ID: "listUsers", HTTPMethod: "GET", Path: "/users"},
	}, zap.NewNop())

	op, ok := c.FindByID("getUser")
	require.True(t, ok)
	assert.Equal(t, "/users/{id}", op.Path)

	_, ok = c.FindByID("neverInserted")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCatalog_DuplicateIDLastWriteWins(t *testing.T) {
	t.Parallel()

	c := NewCatalog([]OperationDescriptor{
		{ID: "getUser", Path: "/v1/users/{id}", SourceName: "a.json"},
		{ID: "getUser", Path: "/v2/users/{id}", SourceName: "b.json"},
	}, zap.NewNop())

	assert.Equal(t, 1, c.Len())
	op, ok := c.FindByID("getUser")
	require.True(t, ok)
	assert.Equal(t, "/v2/users/{id}", op.Path)
	assert.Equal(t, "b.json", op.SourceName)
}

func TestCatalog_FindByTag(t *testing.T) {
	t.Parallel()

	c := NewCatalog([]OperationDescriptor{
		{ID: "a", Tags: []string{"users"}},
		{ID: "b", Tags: []string{"orders"}},
		{ID: "c", Tags: []string{"users", "admin"}},
		{ID: "d"},
	}, zap.NewNop())

	users := c.FindByTag("users")
	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0].ID)
	assert.Equal(t, "c", users[1].ID)

	assert.Empty(t, c.FindByTag("billing"))
}

func TestCatalog_AllPreservesOrder(t *testing.T) {
	t.Parallel()

	c := NewCatalog([]OperationDescriptor{
		{ID: "z"}, {ID: "a"}, {ID: "m"},
	}, zap.NewNop())

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, "z", all[0].ID)
	assert.Equal(t, "a", all[1].ID)
	assert.Equal(t, "m", all[2].ID)
}
