// Package serialization reads and writes network checkpoints.
//
// File layout of the .mlpk format:
//
//	magic "MLPK" (4 bytes)
//	format version (uint32, little-endian)
//	header length (uint32, little-endian)
//	header (JSON)
//	payload checksum (SHA-256, 32 bytes)
//	payload (tensor data, float64 little-endian, in header order)
//
// The header records the layer sizes, the cost kind and per-tensor
// metadata (name, shape, offset, size), so a file can be validated
// before any parameter data is trusted.
package serialization

import "time"

// Format constants.
const (
	MagicBytes    = "MLPK"
	FormatVersion = 1
	ChecksumSize  = 32 // SHA-256

	// MaxHeaderSize bounds the JSON header so a corrupt length field
	// cannot trigger a huge allocation.
	MaxHeaderSize = 1 << 20
)

// Header is the JSON header of a checkpoint file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	CreatedAt     time.Time         `json:"created_at"`
	LayerSizes    []int             `json:"layer_sizes"`
	Cost          string            `json:"cost"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TensorMeta describes one tensor in the payload.
type TensorMeta struct {
	Name   string `json:"name"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // bytes from the start of the payload
	Size   int64  `json:"size"`   // bytes
}
