package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/adsingh-64/mlp/internal/nn"
)

// Read parses a checkpoint file and returns its header and state dict.
// The payload checksum is verified before any tensor data is returned.
func Read(path string) (Header, map[string][]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	if len(raw) < 12 || !bytes.Equal(raw[:4], []byte(MagicBytes)) {
		return Header{}, nil, ErrInvalidMagic
	}
	version := binary.LittleEndian.Uint32(raw[4:8])
	if version != FormatVersion {
		return Header{}, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	headerLen := binary.LittleEndian.Uint32(raw[8:12])
	if headerLen > MaxHeaderSize {
		return Header{}, nil, ErrHeaderTooLarge
	}
	if len(raw) < 12+int(headerLen)+ChecksumSize {
		return Header{}, nil, fmt.Errorf("truncated checkpoint file")
	}

	var header Header
	if err := json.Unmarshal(raw[12:12+headerLen], &header); err != nil {
		return Header{}, nil, fmt.Errorf("failed to decode header: %w", err)
	}

	sumStart := 12 + int(headerLen)
	payload := raw[sumStart+ChecksumSize:]
	if !verifyChecksum(payload, raw[sumStart:sumStart+ChecksumSize]) {
		return Header{}, nil, ErrChecksumMismatch
	}

	sd := make(map[string][]float64, len(header.Tensors))
	for _, tm := range header.Tensors {
		if tm.Offset < 0 || tm.Size < 0 || tm.Offset+tm.Size > int64(len(payload)) {
			return Header{}, nil, fmt.Errorf("%w: tensor %q", ErrOutOfBounds, tm.Name)
		}
		if tm.Size%8 != 0 {
			return Header{}, nil, fmt.Errorf("tensor %q: size %d not a multiple of 8", tm.Name, tm.Size)
		}
		data := make([]float64, tm.Size/8)
		for i := range data {
			bits := binary.LittleEndian.Uint64(payload[tm.Offset+int64(8*i):])
			data[i] = math.Float64frombits(bits)
		}
		sd[tm.Name] = data
	}

	return header, sd, nil
}

// LoadNetwork reconstructs a network from a checkpoint: the header
// supplies the layer sizes and cost kind, the payload supplies the
// parameters.
func LoadNetwork(path string) (*nn.Network, Header, error) {
	header, sd, err := Read(path)
	if err != nil {
		return nil, Header{}, err
	}

	cost, err := nn.CostByName(header.Cost)
	if err != nil {
		return nil, Header{}, fmt.Errorf("checkpoint %s: %w", path, err)
	}

	// The freshly initialized parameters are immediately overwritten,
	// so the seed is irrelevant.
	net, err := nn.New(header.LayerSizes, cost, rand.New(rand.NewSource(1)))
	if err != nil {
		return nil, Header{}, fmt.Errorf("checkpoint %s: %w", path, err)
	}
	if err := net.LoadStateDict(sd); err != nil {
		return nil, Header{}, fmt.Errorf("checkpoint %s: %w", path, err)
	}
	return net, header, nil
}
