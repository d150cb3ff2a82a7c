package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRows_DecimalTuple(t *testing.T) {
	raw := "[(26, Decimal('92082741'), Decimal('7611337'), 0)]"
	rows := NormalizeRows(raw)

	require.Len(t, rows, 1)
	require.Len(t, rows[0], 4)
	assert.Equal(t, int64(26), rows[0][0])
	assert.Equal(t, int64(92082741), rows[0][1])
	assert.Equal(t, int64(7611337), rows[0][2])
	assert.Equal(t, int64(0), rows[0][3])
}

func TestNormalizeRows_MultipleTuples(t *testing.T) {
	raw := "[(1, 'A'), (2, 'B')]"
	rows := NormalizeRows(raw)

	require.Len(t, rows, 2)
	assert.Equal(t, []any{int64(1), "A"}, rows[0])
	assert.Equal(t, []any{int64(2), "B"}, rows[1])
}

func TestNormalizeRows_NullAndBool(t *testing.T) {
	raw := "[(NULL, True, False, None)]"
	rows := NormalizeRows(raw)

	require.Len(t, rows, 1)
	assert.Equal(t, []any{nil, true, false, nil}, rows[0])
}

func TestNormalizeRows_BareNumbersFallback(t *testing.T) {
	raw := "26 92082741.5 -3"
	rows := NormalizeRows(raw)

	require.Len(t, rows, 1)
	assert.Equal(t, []any{int64(26), 92082741.5, int64(-3)}, rows[0])
}

func TestNormalizeRows_Unparseable(t *testing.T) {
	assert.Nil(t, NormalizeRows(""))
	assert.Nil(t, NormalizeRows("no result"))
}

func TestFormatWon(t *testing.T) {
	assert.Equal(t, "92,082,741원", FormatWon(int64(92082741)))
	assert.Equal(t, "0원", FormatWon(int64(0)))
	assert.Equal(t, "1,000원", FormatWon(int64(1000)))
	assert.Equal(t, "123원", FormatWon(int64(123)))
	assert.Equal(t, "-7,611,337원", FormatWon(int64(-7611337)))
	assert.Equal(t, "85,000,000원", FormatWon("85000000"))
	assert.Equal(t, "n/a", FormatWon("n/a"))
}

func TestCoercions(t *testing.T) {
	f, ok := AsFloat("12.5")
	require.True(t, ok)
	assert.Equal(t, 12.5, f)

	_, ok = AsFloat("abc")
	assert.False(t, ok)

	n, ok := AsInt(int64(42))
	require.True(t, ok)
	assert.Equal(t, 42, n)

	b, ok := AsBool(true)
	require.True(t, ok)
	assert.True(t, b)

	b, ok = AsBool(int64(1))
	require.True(t, ok)
	assert.True(t, b)

	b, ok = AsBool(int64(0))
	require.True(t, ok)
	assert.False(t, b)

	_, ok = AsBool("yes")
	assert.False(t, ok)
}
