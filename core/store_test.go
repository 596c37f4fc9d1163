package core

import (
	"path/filepath"
	"testing"

	"github.com/axiomesh/axiom-kit/storage/leveldb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	db, err := leveldb.New(filepath.Join(t.TempDir(), "storage"))
	require.Nil(t, err)
	store := NewStore(db)
	t.Cleanup(func() {
		assert.Nil(t, store.Close())
	})
	return store
}

func TestStoreUpdateIsAtomic(t *testing.T) {
	store := newTestStore(t)

	err := store.Update(func(tx *Txn) error {
		require.Nil(t, tx.PutProposal(&Proposal{ID: 1, Title: "first"}))
		require.Nil(t, tx.PutProposal(&Proposal{ID: 2, Title: "second"}))
		return errors.New("abort")
	})
	assert.EqualError(t, err, "abort")

	err = store.View(func(tx *Txn) error {
		_, err := tx.Proposal(1)
		assert.ErrorIs(t, err, ErrProposalNotFound)
		proposals, err := tx.Proposals()
		require.Nil(t, err)
		assert.Empty(t, proposals)
		return nil
	})
	require.Nil(t, err)
}

func TestStoreReadsOwnWrites(t *testing.T) {
	store := newTestStore(t)

	require.Nil(t, store.Update(func(tx *Txn) error {
		return tx.PutProposal(&Proposal{ID: 2, Title: "committed"})
	}))

	err := store.Update(func(tx *Txn) error {
		require.Nil(t, tx.PutProposal(&Proposal{ID: 1, Title: "staged"}))
		p, err := tx.Proposal(1)
		require.Nil(t, err)
		assert.Equal(t, "staged", p.Title)

		proposals, err := tx.Proposals()
		require.Nil(t, err)
		require.Len(t, proposals, 2)
		assert.Equal(t, uint64(1), proposals[0].ID)
		assert.Equal(t, uint64(2), proposals[1].ID)
		return nil
	})
	require.Nil(t, err)
}

func TestStoreViewIsReadOnly(t *testing.T) {
	store := newTestStore(t)

	err := store.View(func(tx *Txn) error {
		return tx.PutConfig(&GovernanceConfig{})
	})
	assert.NotNil(t, err)

	err = store.View(func(tx *Txn) error {
		_, err := tx.Config()
		return err
	})
	assert.ErrorIs(t, err, ErrNotInitialized)
}
