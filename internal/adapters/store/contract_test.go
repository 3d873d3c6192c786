package store

import (
	"context"
	"testing"

	"github.com/mikey/contact-relay/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behaviour every MessageStore must share
func runStoreContract(t *testing.T, s core.MessageStore) {
	t.Helper()
	ctx := context.Background()

	empty, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	first, err := s.Create(ctx, core.Submission{Name: "Ann", Email: "ann@x.com", Message: "hi"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, "Ann", first.Name)

	second, err := s.Create(ctx, core.Submission{Name: "Bob", Email: "bob@x.com", Message: "<b>raw</b>\x01"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	listed, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID, "newest record first")
	assert.Equal(t, first.ID, listed[1].ID)
	assert.Equal(t, "<b>raw</b>\x01", listed[0].Message, "stored verbatim")
	assert.False(t, listed[0].CreatedAt.Before(listed[1].CreatedAt))
	assert.True(t, first.CreatedAt.Equal(listed[1].CreatedAt))

	again, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, listed, again, "listing is idempotent")
}
