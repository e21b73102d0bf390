package token

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func TestTokens(t *testing.T) {
	md, err := New("secret").GetRequestMetadata(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer secret", md["authorization"])

	require.True(t, Valid(metadata.New(md), "secret"))
	require.False(t, Valid(metadata.New(md), "other"))
	require.False(t, Valid(metadata.MD{}, "secret"))
}
