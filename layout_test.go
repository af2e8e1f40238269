package vault_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/vault"
	vaulttest "github.com/blockberries/vault/testing"
	"github.com/blockberries/vault/types"
)

const (
	offsetCapacity = 1 + 32*7
	offsetReserved = offsetCapacity + 8*4 + 2*2
)

func TestLayoutSize(t *testing.T) {
	require.Equal(t, 1286, vault.LayoutSize)

	v := newVault(0, 0)
	data, err := v.Encode()
	require.NoError(t, err)
	require.Len(t, data, vault.LayoutSize)

	v.SetCapacity(12345)
	v.SetTokensDeposited(1 << 50)
	k := vaulttest.Key(0x77)
	v.SetMintBurnAuthority(&k)
	data2, err := v.Encode()
	require.NoError(t, err)
	require.Len(t, data2, vault.LayoutSize, "size must not depend on field values")
}

func TestEncode_FieldOrder(t *testing.T) {
	v := vault.New(vaulttest.Key(1), vaulttest.Key(2), vaulttest.Key(3), 9, vaulttest.Key(4), 300, 400, 201)
	v.SetCapacity(77)
	v.SetReceiptSupply(55)
	v.SetTokensDeposited(66)

	data, err := v.Encode()
	require.NoError(t, err)

	require.Equal(t, byte(types.AccountTypeVault), data[0])
	require.Equal(t, vaulttest.Key(4).Bytes(), data[1:33], "base")
	require.Equal(t, vaulttest.Key(1).Bytes(), data[33:65], "receipt mint")
	require.Equal(t, vaulttest.Key(2).Bytes(), data[65:97], "supported mint")
	require.Equal(t, vaulttest.Key(3).Bytes(), data[97:129], "admin")
	require.Equal(t, make([]byte, 32), data[193:225], "absent mint burn authority")

	le := binary.LittleEndian
	require.Equal(t, uint64(77), le.Uint64(data[offsetCapacity:]))
	require.Equal(t, uint64(9), le.Uint64(data[offsetCapacity+8:]))
	require.Equal(t, uint64(55), le.Uint64(data[offsetCapacity+16:]))
	require.Equal(t, uint64(66), le.Uint64(data[offsetCapacity+24:]))
	require.Equal(t, uint16(300), le.Uint16(data[offsetCapacity+32:]))
	require.Equal(t, uint16(400), le.Uint16(data[offsetCapacity+34:]))
	require.Equal(t, byte(201), data[vault.LayoutSize-1])
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	v := newVault(12, 34)
	v.SetCapacity(1_000)
	v.SetTokensDeposited(600)
	v.SetReceiptSupply(700)
	v.SetDelegationAdmin(vaulttest.Key(0xD1))
	v.SetFeeOwner(vaulttest.Key(0xFE))
	k := vaulttest.Key(0x42)
	v.SetMintBurnAuthority(&k)

	data, err := v.Encode()
	require.NoError(t, err)
	got, err := vault.Decode(data)
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestDecode_PreservesReserved(t *testing.T) {
	v := newVault(0, 0)
	data, err := v.Encode()
	require.NoError(t, err)
	for i := 0; i < vault.ReservedSize; i++ {
		data[offsetReserved+i] = byte(i)
	}

	got, err := vault.Decode(data)
	require.NoError(t, err)
	reserved := got.Reserved()
	require.Equal(t, data[offsetReserved:offsetReserved+vault.ReservedSize], reserved[:])

	again, err := got.Encode()
	require.NoError(t, err)
	require.Equal(t, data, again)
}

func TestDecode_Truncated(t *testing.T) {
	v := newVault(0, 0)
	data, err := v.Encode()
	require.NoError(t, err)

	for _, n := range []int{0, 1, vault.LayoutSize - 1} {
		_, err := vault.Decode(data[:n])
		require.ErrorIs(t, err, vault.ErrMalformedEncoding, "length %d", n)
	}
}

func TestDecode_IgnoresTrailingBytes(t *testing.T) {
	v := newVault(5, 6)
	data, err := v.Encode()
	require.NoError(t, err)

	got, err := vault.Decode(append(data, 0xFF, 0xFF))
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestDecode_DoesNotCheckDiscriminant(t *testing.T) {
	v := newVault(0, 0)
	data, err := v.Encode()
	require.NoError(t, err)
	data[0] = byte(types.AccountTypeWithdrawalTicket)

	got, err := vault.Decode(data)
	require.NoError(t, err)
	require.False(t, got.IsStructValid())
}

func TestEncodeInto(t *testing.T) {
	v := newVault(0, 0)

	err := v.EncodeInto(make([]byte, vault.LayoutSize-1))
	require.ErrorIs(t, err, vault.ErrAccountDataTooSmall)

	buf := bytes.Repeat([]byte{0xEE}, vault.LayoutSize+4)
	require.NoError(t, v.EncodeInto(buf))
	want, err := v.Encode()
	require.NoError(t, err)
	require.Equal(t, want, buf[:vault.LayoutSize])
	require.Equal(t, []byte{0xEE, 0xEE, 0xEE, 0xEE}, buf[vault.LayoutSize:])
}
