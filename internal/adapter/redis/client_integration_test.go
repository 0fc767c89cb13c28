package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Connects(t *testing.T) {
	client := setupTestClient(t)

	err := client.Ping(context.Background()).Err()
	require.NoError(t, err)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("not-a-url://", nil)

	assert.Error(t, err)
}
