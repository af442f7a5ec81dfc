package typeconv

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rowID string

func (r rowID) String() string { return "AAAR" + string(r) }

type interval struct{ days, seconds int64 }

func (i interval) String() string { return fmt.Sprintf("+%d %ds", i.days, i.seconds) }

func TestNormalize_Scalars(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{true, true},
		{"KING", "KING"},
		{int64(7), int64(7)},
		{int(7), int64(7)},
		{int32(-3), int64(-3)},
		{uint16(9), int64(9)},
		{uint64(math.MaxUint64), "18446744073709551615"},
		{float32(1.5), float64(1.5)},
		{2.25, 2.25},
		{now, now},
		{rowID("1"), "1"},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestNormalize_BytesAreCopied(t *testing.T) {
	raw := []byte{0xde, 0xad}
	got, err := Normalize(raw)
	require.NoError(t, err)

	raw[0] = 0
	assert.Equal(t, []byte{0xde, 0xad}, got)
}

func TestNormalize_RejectsComposites(t *testing.T) {
	n := 1
	for _, v := range []any{[]any{1}, map[string]any{"a": 1}, struct{}{}, []string{"x"}, interval{1, 30}, &n} {
		_, err := Normalize(v)
		assert.True(t, errors.Is(err, ErrNotScalar), "%T", v)
	}
}

func TestNormalizeRow(t *testing.T) {
	row, err := NormalizeRow([]any{1, "x", nil}, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "x", nil}, row)

	_, err = NormalizeRow([]any{1}, 2)
	require.ErrorIs(t, err, ErrRowWidth)

	_, err = NormalizeRow(nil, 1)
	require.ErrorIs(t, err, ErrRowWidth)

	_, err = NormalizeRow([]any{"ok", []any{"nested"}}, 2)
	require.ErrorIs(t, err, ErrNotScalar)
	assert.Contains(t, err.Error(), "column 1")
}

func TestCanonicalType(t *testing.T) {
	assert.Equal(t, "VARCHAR2", CanonicalType("NVARCHAR2"))
	assert.Equal(t, "NUMBER", CanonicalType(" number "))
	assert.Equal(t, "DATE", CanonicalType("DATE"))
	assert.Equal(t, "TIMESTAMP", CanonicalType("TimeStampDTY"))
	assert.Equal(t, "CLOB", CanonicalType("OCIClobLocator"))
	assert.Equal(t, "XMLTYPE", CanonicalType("XMLType"))
}
