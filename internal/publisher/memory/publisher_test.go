package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/aram-match-crawler/internal/publisher/memory"
)

func TestPublishRecordsPayloads(t *testing.T) {
	t.Parallel()

	p := memory.New()

	id, err := p.Publish(context.Background(), map[string]string{"match_id": "EUW1_1"})
	require.NoError(t, err)
	require.Equal(t, "memory-1", id)

	id, err = p.Publish(context.Background(), map[string]string{"match_id": "EUW1_2"})
	require.NoError(t, err)
	require.Equal(t, "memory-2", id)

	msgs := p.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, map[string]string{"match_id": "EUW1_1"}, msgs[0])
}
