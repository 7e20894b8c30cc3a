package scann

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/vectorforge/rnndescent/internal/quantization"
)

// AnisotropicQuantizer implements anisotropic vector quantization
//
// This implementation trains one k-means codebook per subvector, like
// Product Quantization. Dimensions are split as evenly as possible (the
// first dim % numSubvectors subvectors get one extra dimension). No learned
// rotation is applied (useRotation is always false), and subvector sizes
// are not adapted to the data distribution.
type AnisotropicQuantizer struct {
	dim           int           // Original dimension
	numSubvectors int           // Number of subvectors
	bitsPerCode   int           // Bits per code
	subvectorDims []int         // Dimensions per subvector (can vary!)
	rotation      [][]float32   // Learned rotation matrix (optional)
	codebooks     [][][]float32 // Codebooks for each subvector
	useRotation   bool          // Whether to use rotation
}

// NewAnisotropicQuantizer creates a new anisotropic quantizer
func NewAnisotropicQuantizer(dim, numSubvectors, bitsPerCode int) *AnisotropicQuantizer {
	return &AnisotropicQuantizer{
		dim:           dim,
		numSubvectors: numSubvectors,
		bitsPerCode:   bitsPerCode,
		useRotation:   false, // Disabled by default for simplicity
	}
}

// Train trains the anisotropic quantizer
func (aq *AnisotropicQuantizer) Train(vectors [][]float32, config *quantization.QuantizationConfig) error {
	if len(vectors) == 0 {
		return fmt.Errorf("no training data provided")
	}

	if len(vectors[0]) != aq.dim {
		return fmt.Errorf("dimension mismatch")
	}

	fmt.Printf("  Anisotropic Quantizer training:\n")
	fmt.Printf("    Dimensions: %d\n", aq.dim)
	fmt.Printf("    Subvectors: %d\n", aq.numSubvectors)
	fmt.Printf("    Bits per code: %d\n", aq.bitsPerCode)

	// Step 1: Compute subvector dimensions
	// For now, use equal division (future: learn based on variance)
	aq.subvectorDims = make([]int, aq.numSubvectors)
	baseDim := aq.dim / aq.numSubvectors
	remainder := aq.dim % aq.numSubvectors

	for i := 0; i < aq.numSubvectors; i++ {
		aq.subvectorDims[i] = baseDim
		if i < remainder {
			aq.subvectorDims[i]++
		}
	}

	// Step 2: Optional rotation (PCA-like transformation)
	// For simplicity, we skip this in the basic implementation
	// In production SCANN, this uses SVD to find principal components

	// Step 3: Train codebooks for each subvector
	aq.codebooks = make([][][]float32, aq.numSubvectors)
	numCodes := 1 << aq.bitsPerCode

	offset := 0
	for sv := 0; sv < aq.numSubvectors; sv++ {
		svDim := aq.subvectorDims[sv]
		endDim := offset + svDim

		fmt.Printf("    Training codebook %d/%d (dims %d-%d)...\n",
			sv+1, aq.numSubvectors, offset, endDim-1)

		// Extract subvectors
		subvectors := make([][]float32, len(vectors))
		for i, vec := range vectors {
			subvectors[i] = make([]float32, svDim)
			copy(subvectors[i], vec[offset:endDim])
		}

		// Train codebook with k-means++
		centroids, err := quantization.KMeansPlusPlus(subvectors, numCodes, config)
		if err != nil {
			return fmt.Errorf("k-means failed for subvector %d: %w", sv, err)
		}

		aq.codebooks[sv] = centroids
		offset = endDim
	}

	fmt.Printf("  Anisotropic Quantizer training complete\n")
	return nil
}

// Encode encodes a vector
func (aq *AnisotropicQuantizer) Encode(vec []float32) []byte {
	if len(vec) != aq.dim {
		return nil
	}

	codes := make([]byte, aq.numSubvectors)
	offset := 0

	for sv := 0; sv < aq.numSubvectors; sv++ {
		svDim := aq.subvectorDims[sv]
		endDim := offset + svDim
		subvector := vec[offset:endDim]

		// Find nearest centroid
		minDist := float32(math.MaxFloat32)
		minCode := 0

		for code, centroid := range aq.codebooks[sv] {
			dist := quantization.EuclideanDistanceFloat32(subvector, centroid)
			if dist < minDist {
				minDist = dist
				minCode = code
			}
		}

		codes[sv] = byte(minCode)
		offset = endDim
	}

	return codes
}

// Decode decodes a compressed vector
func (aq *AnisotropicQuantizer) Decode(codes []byte) []float32 {
	if len(codes) != aq.numSubvectors {
		return nil
	}

	vec := make([]float32, aq.dim)
	offset := 0

	for sv := 0; sv < aq.numSubvectors; sv++ {
		code := codes[sv]
		if int(code) >= len(aq.codebooks[sv]) {
			continue
		}

		centroid := aq.codebooks[sv][code]
		svDim := aq.subvectorDims[sv]
		copy(vec[offset:offset+svDim], centroid)
		offset += svDim
	}

	return vec
}

// ComputeDistanceTable precomputes distance table for asymmetric distance
func (aq *AnisotropicQuantizer) ComputeDistanceTable(query []float32) interface{} {
	if len(query) != aq.dim {
		return nil
	}

	distTable := make([][]float32, aq.numSubvectors)
	offset := 0

	for sv := 0; sv < aq.numSubvectors; sv++ {
		svDim := aq.subvectorDims[sv]
		endDim := offset + svDim
		querySubvector := query[offset:endDim]

		numCodes := len(aq.codebooks[sv])
		distTable[sv] = make([]float32, numCodes)

		// Precompute squared distances
		for code, centroid := range aq.codebooks[sv] {
			var dist float32
			for d := 0; d < svDim; d++ {
				diff := querySubvector[d] - centroid[d]
				dist += diff * diff
			}
			distTable[sv][code] = dist
		}

		offset = endDim
	}

	return distTable
}

// AsymmetricDistance computes distance using precomputed table
func (aq *AnisotropicQuantizer) AsymmetricDistance(distTableInterface interface{}, codes []byte) float32 {
	distTable := distTableInterface.([][]float32)

	if len(codes) != aq.numSubvectors {
		return float32(math.MaxFloat32)
	}

	var totalDist float32
	for sv := 0; sv < aq.numSubvectors; sv++ {
		code := codes[sv]
		if int(code) >= len(distTable[sv]) {
			return float32(math.MaxFloat32)
		}
		totalDist += distTable[sv][code]
	}

	return float32(math.Sqrt(float64(totalDist)))
}

// GetCompressionRatio returns compression ratio
func (aq *AnisotropicQuantizer) GetCompressionRatio() float32 {
	originalBytes := float32(aq.dim * 4) // float32 = 4 bytes
	compressedBytes := float32(aq.numSubvectors)
	return originalBytes / compressedBytes
}

// GetBytesPerVector returns bytes per compressed vector
func (aq *AnisotropicQuantizer) GetBytesPerVector() int {
	return aq.numSubvectors
}

// Serialize serializes the quantizer
func (aq *AnisotropicQuantizer) Serialize() ([]byte, error) {
	// Format: [dim][numSubvectors][bitsPerCode][subvectorDims...][codebooks...]
	numCodes := 1 << aq.bitsPerCode

	// Calculate size
	headerSize := 12 + aq.numSubvectors*4 // header + subvector dims
	codebookSize := 0
	for sv := 0; sv < aq.numSubvectors; sv++ {
		codebookSize += numCodes * aq.subvectorDims[sv] * 4
	}
	totalSize := headerSize + codebookSize

	data := make([]byte, totalSize)
	offset := 0

	// Write header
	binary.LittleEndian.PutUint32(data[offset:], uint32(aq.dim))
	offset += 4
	binary.LittleEndian.PutUint32(data[offset:], uint32(aq.numSubvectors))
	offset += 4
	binary.LittleEndian.PutUint32(data[offset:], uint32(aq.bitsPerCode))
	offset += 4

	// Write subvector dimensions
	for sv := 0; sv < aq.numSubvectors; sv++ {
		binary.LittleEndian.PutUint32(data[offset:], uint32(aq.subvectorDims[sv]))
		offset += 4
	}

	// Write codebooks
	for sv := 0; sv < aq.numSubvectors; sv++ {
		for code := 0; code < numCodes; code++ {
			for d := 0; d < aq.subvectorDims[sv]; d++ {
				bits := math.Float32bits(aq.codebooks[sv][code][d])
				binary.LittleEndian.PutUint32(data[offset:], bits)
				offset += 4
			}
		}
	}

	return data, nil
}

// Deserialize deserializes the quantizer
func (aq *AnisotropicQuantizer) Deserialize(data []byte) error {
	if len(data) < 12 {
		return fmt.Errorf("data too short")
	}

	offset := 0

	// Read header
	aq.dim = int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	aq.numSubvectors = int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	aq.bitsPerCode = int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4

	numCodes := 1 << aq.bitsPerCode

	// Read subvector dimensions
	aq.subvectorDims = make([]int, aq.numSubvectors)
	for sv := 0; sv < aq.numSubvectors; sv++ {
		aq.subvectorDims[sv] = int(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
	}

	// Read codebooks
	aq.codebooks = make([][][]float32, aq.numSubvectors)
	for sv := 0; sv < aq.numSubvectors; sv++ {
		aq.codebooks[sv] = make([][]float32, numCodes)
		for code := 0; code < numCodes; code++ {
			aq.codebooks[sv][code] = make([]float32, aq.subvectorDims[sv])
			for d := 0; d < aq.subvectorDims[sv]; d++ {
				if offset+4 > len(data) {
					return fmt.Errorf("unexpected end of data")
				}
				bits := binary.LittleEndian.Uint32(data[offset:])
				aq.codebooks[sv][code][d] = math.Float32frombits(bits)
				offset += 4
			}
		}
	}

	return nil
}

// SymmetricDistance computes distance between two encoded vectors
func (aq *AnisotropicQuantizer) SymmetricDistance(codes1, codes2 []byte) float32 {
	if len(codes1) != aq.numSubvectors || len(codes2) != aq.numSubvectors {
		return float32(math.MaxFloat32)
	}

	var totalDist float32

	for sv := 0; sv < aq.numSubvectors; sv++ {
		code1 := codes1[sv]
		code2 := codes2[sv]

		if int(code1) >= len(aq.codebooks[sv]) || int(code2) >= len(aq.codebooks[sv]) {
			return float32(math.MaxFloat32)
		}

		centroid1 := aq.codebooks[sv][code1]
		centroid2 := aq.codebooks[sv][code2]

		var dist float32
		for d := 0; d < aq.subvectorDims[sv]; d++ {
			diff := centroid1[d] - centroid2[d]
			dist += diff * diff
		}

		totalDist += dist
	}

	return float32(math.Sqrt(float64(totalDist)))
}
