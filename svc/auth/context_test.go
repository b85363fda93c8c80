package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/fintrack/svc/auth"
)

func TestLookupUserID(t *testing.T) {
	t.Parallel()

	_, ok := auth.LookupUserID(context.Background())
	assert.False(t, ok)

	_, ok = auth.LookupUserID(auth.SetUserIDToContext(context.Background(), uuid.Nil))
	assert.False(t, ok)

	id := uuid.New()
	got, ok := auth.LookupUserID(auth.SetUserIDToContext(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id.String(), got)
}
