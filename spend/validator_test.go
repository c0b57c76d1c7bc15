// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package spend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/storanet/address"
)

type fakeParentFetcher struct {
	byAddr map[string]SignedSpend
}

func newFakeParentFetcher() *fakeParentFetcher {
	return &fakeParentFetcher{byAddr: make(map[string]SignedSpend)}
}

func (f *fakeParentFetcher) put(s SignedSpend) {
	f.byAddr[s.Address().MapKey()] = s
}

func (f *fakeParentFetcher) GetSpend(_ context.Context, addr address.Address) (SignedSpend, error) {
	s, ok := f.byAddr[addr.MapKey()]
	if !ok {
		return SignedSpend{}, ErrParentNotFound
	}
	return s, nil
}

type fakeStore struct {
	byAddr map[string]SignedSpend
}

func newFakeStore() *fakeStore {
	return &fakeStore{byAddr: make(map[string]SignedSpend)}
}

func (s *fakeStore) WriteSpend(_ context.Context, spend SignedSpend) error {
	key := spend.Address().MapKey()
	if existing, ok := s.byAddr[key]; ok && !existing.Equal(spend) {
		return &DoubleSpendAttemptError{New: spend, Existing: existing}
	}
	s.byAddr[key] = spend
	return nil
}

type fakeNotifier struct {
	notified []DoubleSpendAttemptError
}

func (n *fakeNotifier) NotifyDoubleSpend(newSpend, existing SignedSpend) {
	n.notified = append(n.notified, DoubleSpendAttemptError{New: newSpend, Existing: existing})
}

func txWithInputs(inputs ...TxHash) Transaction {
	return Transaction{Inputs: inputs, Outputs: []Output{{ID: [32]byte{0x42}, Amount: BlindedAmount{1}}}}
}

func TestValidateRejectsMismatchedSourceTxHash(t *testing.T) {
	parents := newFakeParentFetcher()
	store := newFakeStore()
	v := NewValidator(parents, store, nil)

	tx := txWithInputs()
	s := SignedSpend{ID: [32]byte{1}, SrcTxHash: TxHash{0xFF}}

	err := v.Validate(context.Background(), s, tx)
	require.Error(t, err)
	var mismatch *SignedSrcTxHashMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestValidateRejectsParentLineageMismatch(t *testing.T) {
	parents := newFakeParentFetcher()
	store := newFakeStore()
	v := NewValidator(parents, store, nil)

	parentInputID := [32]byte{0xAA}
	parent := SignedSpend{ID: parentInputID, DstTxHash: TxHash{0x01}}
	parents.put(parent)

	tx := txWithInputs(parentInputID)
	s := SignedSpend{ID: [32]byte{1}, SrcTxHash: tx.Hash()}

	err := v.Validate(context.Background(), s, tx)
	require.Error(t, err)
	var mismatch *ParentTxHashMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestValidateSucceedsWithConsistentLineage(t *testing.T) {
	parents := newFakeParentFetcher()
	store := newFakeStore()
	v := NewValidator(parents, store, nil)

	parentInputID := [32]byte{0xAA}
	tx := txWithInputs(parentInputID)
	s := SignedSpend{ID: [32]byte{1}, SrcTxHash: tx.Hash()}

	parent := SignedSpend{ID: parentInputID, DstTxHash: s.SrcTxHash, SrcTxHash: TxHash{0x01}}
	parents.put(parent)

	err := v.Validate(context.Background(), s, tx)
	require.NoError(t, err)
}

func TestValidateDetectsDoubleSpendAndNotifies(t *testing.T) {
	parents := newFakeParentFetcher()
	store := newFakeStore()
	notifier := &fakeNotifier{}
	v := NewValidator(parents, store, notifier)

	tx := txWithInputs()
	s1 := SignedSpend{ID: [32]byte{1}, SrcTxHash: tx.Hash()}
	require.NoError(t, v.Validate(context.Background(), s1, tx))

	s2 := SignedSpend{ID: [32]byte{1}, SrcTxHash: tx.Hash(), DstTxHash: TxHash{0x99}}
	err := v.Validate(context.Background(), s2, tx)
	require.Error(t, err)
	var conflict *DoubleSpendAttemptError
	require.ErrorAs(t, err, &conflict)
	require.True(t, conflict.New.Equal(s2))
	require.True(t, conflict.Existing.Equal(s1))

	require.Len(t, notifier.notified, 1)
}
