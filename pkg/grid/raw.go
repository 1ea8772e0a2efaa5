package grid

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	serr "github.com/matzehuels/starscape/pkg/errors"
)

// byteOrder is fixed so field files move between machines.
var byteOrder = binary.LittleEndian

// WriteRaw encodes the field as a flat sequence of float64 values in
// row-major order with no header.
func WriteRaw(w io.Writer, f *Field) error {
	bw := bufio.NewWriter(w)
	var buf [8]byte
	for _, v := range f.Data {
		byteOrder.PutUint64(buf[:], math.Float64bits(v))
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadRaw decodes a headerless float64 stream into a field of dimensions d.
// The caller supplies the dimensions; a stream whose length does not match
// them is rejected with ErrCodeInvalidGrid.
func ReadRaw(r io.Reader, d Dims) (*Field, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeRaw(data, d)
}

// EncodeRaw is the in-memory form of WriteRaw.
func EncodeRaw(f *Field) []byte {
	out := make([]byte, 8*len(f.Data))
	for i, v := range f.Data {
		byteOrder.PutUint64(out[8*i:], math.Float64bits(v))
	}
	return out
}

// DecodeRaw is the in-memory form of ReadRaw.
func DecodeRaw(data []byte, d Dims) (*Field, error) {
	if want := 8 * d.Len(); len(data) != want {
		return nil, serr.New(serr.ErrCodeInvalidGrid,
			"raw field holds %d bytes, grid %s needs %d", len(data), d, want)
	}
	f := NewField(d)
	for i := range f.Data {
		f.Data[i] = math.Float64frombits(byteOrder.Uint64(data[8*i:]))
	}
	return f, nil
}

// LoadRaw reads a field from path. A missing file yields ErrCodeNotFound so
// callers can fall back to regenerating the field.
func LoadRaw(path string, d Dims) (*Field, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, serr.Wrap(serr.ErrCodeNotFound, err, "field %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open field: %w", err)
	}
	defer file.Close()
	return ReadRaw(file, d)
}

// SaveRaw writes the field to path, replacing any existing file.
func SaveRaw(path string, f *Field) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create field: %w", err)
	}
	if err := WriteRaw(file, f); err != nil {
		file.Close()
		return fmt.Errorf("write field: %w", err)
	}
	return file.Close()
}
