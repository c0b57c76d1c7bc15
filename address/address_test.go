// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package address

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceIsSymmetricAndZeroOnSelf(t *testing.T) {
	a := ChunkAddress([]byte("hello"))
	b := ChunkAddress([]byte("world"))

	require.Equal(t, a.Distance(b), b.Distance(a))
	require.Equal(t, [32]byte{}, a.Distance(a))
}

func TestChunkAddressIsContentAddressed(t *testing.T) {
	a1 := ChunkAddress([]byte("hello"))
	a2 := ChunkAddress([]byte("hello"))
	a3 := ChunkAddress([]byte("goodbye"))

	require.True(t, a1.Equal(a2))
	require.False(t, a1.Equal(a3))
}

func TestRegisterAddressIsFunctionOfNameAndTag(t *testing.T) {
	var name [32]byte
	name[0] = 0x01

	a1 := FromRegisterAddress(name, 1)
	a2 := FromRegisterAddress(name, 1)
	a3 := FromRegisterAddress(name, 2)

	require.True(t, a1.Equal(a2))
	require.False(t, a1.Equal(a3))
	require.Equal(t, KindRegister, a1.Kind())
}

func TestEqualAddressesShareKBucketKeyAcrossConstructionPaths(t *testing.T) {
	content := []byte("same bytes")
	a := ChunkAddress(content)
	b := FromChunkAddress([32]byte(a.AsBytes()))

	require.Equal(t, a.AsKBucketKey(), b.AsKBucketKey())
	require.True(t, a.Equal(b))
}

func TestDifferentKindsWithSameRawBytesAreNotEqual(t *testing.T) {
	raw := make([]byte, 32)
	raw[0] = 0xAB

	chunk := FromChunkAddress([32]byte(raw))
	spendRaw := [32]byte(raw)
	spend := Address{kind: KindSpend, raw: spendRaw[:]}

	require.False(t, chunk.Equal(spend))
	require.NotEqual(t, chunk.AsKBucketKey(), [32]byte{}, "sanity: kbucket key shouldn't be zero for nonzero input")
}
