package requestid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	id, ok := FromContext(NewContext(context.Background(), "req-42"))
	assert.True(t, ok)
	assert.Equal(t, "req-42", id)

	_, ok = FromContext(NewContext(context.Background(), ""))
	assert.False(t, ok)
}
