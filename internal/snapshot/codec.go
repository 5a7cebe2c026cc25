package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"

	"github.com/rocketscienceinc/settlers-backend/internal/engine"
)

var ErrCorruptSnapshot = errors.New("corrupt snapshot")

const digestSize = 32

// Encode packs a game as a blake3 digest followed by the lz4 frame of its JSON.
func Encode(game *engine.Game) ([]byte, error) {
	raw, err := json.Marshal(game)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game: %w", err)
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err = zw.Write(raw); err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %w", err)
	}
	if err = zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %w", err)
	}

	sum := blake3.Sum256(buf.Bytes())

	out := make([]byte, 0, digestSize+buf.Len())
	out = append(out, sum[:]...)
	return append(out, buf.Bytes()...), nil
}

// Decode verifies the digest before inflating. The restored game has no random source until
// SetRand is called; otherwise it seeds one lazily.
func Decode(data []byte) (*engine.Game, error) {
	if len(data) < digestSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptSnapshot, len(data))
	}

	body := data[digestSize:]
	if sum := blake3.Sum256(body); !bytes.Equal(sum[:], data[:digestSize]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptSnapshot)
	}

	raw, err := io.ReadAll(lz4.NewReader(bytes.NewReader(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}

	var game engine.Game
	if err = json.Unmarshal(raw, &game); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}

	return &game, nil
}
