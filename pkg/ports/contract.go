package ports

import (
	"context"
	"testing"

	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	const chatID int64 = 4242

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.AwaitingInput{
			Pending: domain.PendingMutation{
				Kind:   domain.MutationAppend,
				Target: domain.NewPath("tags"),
			},
			MenuMessageID: 17,
		}

		require.NoError(t, store.Save(ctx, chatID, state), "Save should not return error")

		loaded, err := store.Load(ctx, chatID)
		require.NoError(t, err, "Load should not return error")
		got, ok := loaded.(domain.AwaitingInput)
		require.True(t, ok, "expected AwaitingInput, got %T", loaded)
		assert.Equal(t, domain.MutationAppend, got.Pending.Kind)
		assert.Equal(t, "/tags", got.Pending.Target.String())
		assert.Equal(t, 17, got.MenuMessageID)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, chatID, domain.Navigating{Address: domain.Root, MenuMessageID: 3}))

		loaded, err := store.Load(ctx, chatID)
		require.NoError(t, err)
		assert.Equal(t, domain.PhaseNavigating, loaded.Phase())
		assert.Equal(t, 3, domain.MenuMessageID(loaded))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, chatID+1)
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, chatID, domain.Authorized{}))
		require.NoError(t, store.Delete(ctx, chatID), "Delete should not return error")

		_, err := store.Load(ctx, chatID)
		assert.ErrorIs(t, err, domain.ErrStateNotFound, "Load after Delete should return ErrStateNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := chatID+10, chatID+11
		require.NoError(t, store.Save(ctx, id1, domain.Authorized{}))
		require.NoError(t, store.Save(ctx, id2, domain.Unauthorized{}))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		chats, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, chats, id1)
		assert.Contains(t, chats, id2)
	})
}
