package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Property: no matter how many transformers are registered for an
// event, one emission applies every one of them exactly once, in
// registration order, with no dedup.
func TestTransformerChainOrderProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		b := NewBus(nil)
		count := rapid.IntRange(0, 20).Draw(t, "count")

		var applied []int
		for i := 0; i < count; i++ {
			i := i
			b.Transform("prop.event", func(ctx context.Context, payload any) (any, error) {
				applied = append(applied, i)
				return payload.(int) + 1, nil
			})
		}

		_, err := b.Emit(context.Background(), "prop.event", 0)
		require.NoError(t, err)

		require.Len(t, applied, count)
		for i, got := range applied {
			require.Equal(t, i, got)
		}

		history := b.HistoryFor("prop.event")
		require.Len(t, history, 1)
		require.Equal(t, count, history[0].TransformedPayload)
	})
}
