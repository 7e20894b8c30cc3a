// Package dataset loads the legacy *vecs benchmark formats (fvecs, bvecs,
// ivecs) used by ANN benchmark corpora: each record is a little-endian int32
// dimension header followed by that many values of the record's element
// type, repeated back-to-back for every vector in the file.
package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// LoadFvecs reads every vector from a .fvecs file: d (int32) followed by d
// float32 values, per record.
func LoadFvecs(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening %s: %w", path, err)
	}
	defer f.Close()

	var vectors [][]float32
	for {
		d, err := readDim(f)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: reading %s: %w", path, err)
		}
		row := make([]float32, d)
		if err := binary.Read(f, binary.LittleEndian, row); err != nil {
			return nil, fmt.Errorf("dataset: reading vector body in %s: %w", path, err)
		}
		vectors = append(vectors, row)
	}
	return vectors, nil
}

// LoadBvecs reads every vector from a .bvecs file: d (int32) followed by d
// uint8 values, promoted to float32.
func LoadBvecs(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening %s: %w", path, err)
	}
	defer f.Close()

	var vectors [][]float32
	for {
		d, err := readDim(f)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: reading %s: %w", path, err)
		}
		raw := make([]uint8, d)
		if _, err := io.ReadFull(f, raw); err != nil {
			return nil, fmt.Errorf("dataset: reading vector body in %s: %w", path, err)
		}
		row := make([]float32, d)
		for i, b := range raw {
			row[i] = float32(b)
		}
		vectors = append(vectors, row)
	}
	return vectors, nil
}

// LoadIvecs reads every vector from a .ivecs file: d (int32) followed by d
// int32 values, widened to int64.
func LoadIvecs(path string) ([][]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening %s: %w", path, err)
	}
	defer f.Close()

	var vectors [][]int64
	for {
		d, err := readDim(f)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: reading %s: %w", path, err)
		}
		raw := make([]int32, d)
		if err := binary.Read(f, binary.LittleEndian, raw); err != nil {
			return nil, fmt.Errorf("dataset: reading vector body in %s: %w", path, err)
		}
		row := make([]int64, d)
		for i, v := range raw {
			row[i] = int64(v)
		}
		vectors = append(vectors, row)
	}
	return vectors, nil
}

// readDim reads the 4-byte little-endian dimension header shared by all
// three formats. Returns io.EOF only when the read starts exactly at file
// end (a clean end of records); any other short read is a malformed file.
func readDim(r io.Reader) (int32, error) {
	var d int32
	if err := binary.Read(r, binary.LittleEndian, &d); err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("truncated dimension header: %w", err)
	}
	return d, nil
}
