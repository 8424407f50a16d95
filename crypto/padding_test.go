package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPKCS7PadRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("a"),
		bytes.Repeat([]byte{0x42}, paddingBlockSize-1),
		bytes.Repeat([]byte{0x42}, paddingBlockSize),
		bytes.Repeat([]byte{0x42}, paddingBlockSize+1),
		bytes.Repeat([]byte{0x42}, 3*paddingBlockSize),
	}
	for _, data := range cases {
		padded := pkcs7Pad(data)
		require.Equal(t, 0, len(padded)%paddingBlockSize)
		require.Greater(t, len(padded), len(data))

		unpadded, err := pkcs7Unpad(padded)
		require.NoError(t, err)
		require.Equal(t, data, unpadded)
	}
}

func TestPKCS7PadOnExactMultipleAddsFullBlock(t *testing.T) {
	data := bytes.Repeat([]byte{0x01}, paddingBlockSize)
	padded := pkcs7Pad(data)
	require.Len(t, padded, 2*paddingBlockSize)
}

func TestPKCS7UnpadRejectsEmptyInput(t *testing.T) {
	_, err := pkcs7Unpad(nil)
	require.ErrorIs(t, err, ErrInvalidPadding)
}

func TestPKCS7UnpadRejectsZeroPadLength(t *testing.T) {
	data := append(bytes.Repeat([]byte{0x42}, paddingBlockSize-1), 0x00)
	_, err := pkcs7Unpad(data)
	require.ErrorIs(t, err, ErrInvalidPadding)
}

func TestPKCS7UnpadRejectsPadLengthAboveBlockSize(t *testing.T) {
	data := append(bytes.Repeat([]byte{0x42}, paddingBlockSize-1), 0xFF)
	_, err := pkcs7Unpad(data)
	require.ErrorIs(t, err, ErrInvalidPadding)
}

func TestPKCS7UnpadRejectsInconsistentPadBytes(t *testing.T) {
	padded := pkcs7Pad([]byte("hello"))
	padded[len(padded)-2] ^= 0xFF
	_, err := pkcs7Unpad(padded)
	require.ErrorIs(t, err, ErrInvalidPadding)
}
