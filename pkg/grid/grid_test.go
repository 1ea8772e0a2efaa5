package grid

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serr "github.com/matzehuels/starscape/pkg/errors"
)

func TestDimsIndexRoundTrip(t *testing.T) {
	d := Dims{3, 4, 5}
	require.Equal(t, 60, d.Len())
	for idx := 0; idx < d.Len(); idx++ {
		i, j, k := d.Coords(idx)
		assert.Equal(t, idx, d.Index(i, j, k))
	}
	assert.Equal(t, 0, d.Index(0, 0, 0))
	assert.Equal(t, 1, d.Index(0, 0, 1))
	assert.Equal(t, 5, d.Index(0, 1, 0))
	assert.Equal(t, 20, d.Index(1, 0, 0))
}

func TestDimsContains(t *testing.T) {
	d := Dims{2, 3, 4}
	assert.True(t, d.Contains([3]int{0, 0, 0}))
	assert.True(t, d.Contains([3]int{1, 2, 3}))
	assert.False(t, d.Contains([3]int{2, 0, 0}))
	assert.False(t, d.Contains([3]int{0, -1, 0}))
	assert.False(t, d.Contains([3]int{0, 0, 4}))
}

func TestFieldPowKeepsOriginal(t *testing.T) {
	f := NewField(Dims{1, 1, 3})
	f.Data = []float64{0, 0.5, 1}
	p := f.Pow(2)
	assert.Equal(t, []float64{0, 0.25, 1}, p.Data)
	assert.Equal(t, []float64{0, 0.5, 1}, f.Data)
}

func TestFieldSlice(t *testing.T) {
	f := NewField(Dims{2, 2, 2})
	f.Set(1, 0, 1, 7)
	s := f.Slice(1)
	require.Len(t, s, 4)
	assert.Equal(t, 7.0, s[1])
}

func TestLabelsDistinctAndMax(t *testing.T) {
	l := NewLabels(Dims{1, 2, 3})
	l.Data = []int32{0, 1, 1, 0, 3, 2}
	assert.Len(t, l.Distinct(), 3)
	assert.Equal(t, int32(3), l.Max())
}

func TestRawRoundTrip(t *testing.T) {
	d := Dims{2, 3, 4}
	f := NewField(d)
	for i := range f.Data {
		f.Data[i] = float64(i) / 7
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRaw(&buf, f))
	assert.Equal(t, 8*d.Len(), buf.Len())

	got, err := ReadRaw(&buf, d)
	require.NoError(t, err)
	assert.Equal(t, f.Data, got.Data)

	decoded, err := DecodeRaw(EncodeRaw(f), d)
	require.NoError(t, err)
	assert.Equal(t, f.Data, decoded.Data)
}

func TestRawLittleEndianLayout(t *testing.T) {
	f := NewField(Dims{1, 1, 1})
	f.Data[0] = 1.0
	// 1.0 is 0x3FF0000000000000.
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}, EncodeRaw(f))
}

func TestDecodeRawSizeMismatch(t *testing.T) {
	_, err := DecodeRaw(make([]byte, 8*10), Dims{2, 2, 2})
	require.Error(t, err)
	assert.True(t, serr.Is(err, serr.ErrCodeInvalidGrid))
}

func TestLoadRawMissingFile(t *testing.T) {
	_, err := LoadRaw(filepath.Join(t.TempDir(), "missing.raw"), Dims{1, 1, 1})
	require.Error(t, err)
	assert.True(t, serr.Is(err, serr.ErrCodeNotFound))
}

func TestSaveLoadRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.raw")
	f := NewField(Dims{1, 2, 2})
	f.Data = []float64{0, 0.25, 0.75, 1}
	require.NoError(t, SaveRaw(path, f))

	got, err := LoadRaw(path, f.Dims)
	require.NoError(t, err)
	assert.Equal(t, f.Data, got.Data)
}
