package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/adsingh-64/mlp/internal/nn"
)

// Save writes the network's parameters to a checkpoint file at path.
// metadata is optional free-form information stored in the header.
func Save(path string, net *nn.Network, metadata map[string]string) error {
	sizes := net.Sizes()
	sd := net.StateDict()

	// Deterministic tensor order: layer by layer, weight then bias.
	header := Header{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		LayerSizes:    sizes,
		Cost:          net.Cost().Name(),
		Metadata:      metadata,
	}

	var payload []byte
	for l := 0; l < len(sizes)-1; l++ {
		for _, t := range []struct {
			name  string
			shape []int
		}{
			{fmt.Sprintf("layer.%d.weight", l), []int{sizes[l+1], sizes[l]}},
			{fmt.Sprintf("layer.%d.bias", l), []int{sizes[l+1]}},
		} {
			data, ok := sd[t.name]
			if !ok {
				return fmt.Errorf("state dict missing %q", t.name)
			}
			header.Tensors = append(header.Tensors, TensorMeta{
				Name:   t.name,
				Shape:  t.shape,
				Offset: int64(len(payload)),
				Size:   int64(8 * len(data)),
			})
			payload = appendFloat64s(payload, data)
		}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	buf := make([]byte, 0, 12+len(headerJSON)+ChecksumSize+len(payload))
	buf = append(buf, MagicBytes...)
	buf = binary.LittleEndian.AppendUint32(buf, FormatVersion)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(headerJSON)))
	buf = append(buf, headerJSON...)
	sum := checksum(payload)
	buf = append(buf, sum[:]...)
	buf = append(buf, payload...)

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

func appendFloat64s(buf []byte, data []float64) []byte {
	for _, v := range data {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return buf
}
