package hexgrid

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EdgeCoord addresses one side of a hex. Each physical edge is shared by two hexes; the canonical
// form always uses NE, E or SE so that the owning hex is the one with the smaller axial address.
type EdgeCoord struct {
	Hex HexCoord  `json:"hex"`
	Dir Direction `json:"direction"`
}

func NewEdge(h HexCoord, dir Direction) EdgeCoord {
	return CanonicalEdge(EdgeCoord{Hex: h, Dir: dir})
}

// CanonicalEdge folds the SW, W and NW sides onto the neighbor that sees them as NE, E or SE.
func CanonicalEdge(e EdgeCoord) EdgeCoord {
	switch e.Dir {
	case SouthWest, West, NorthWest:
		return EdgeCoord{Hex: e.Hex.Neighbor(e.Dir), Dir: e.Dir.Opposite()}
	default:
		return e
	}
}

// EdgesOfHex returns the six canonical edges around h in Direction order.
func EdgesOfHex(h HexCoord) [6]EdgeCoord {
	var out [6]EdgeCoord
	for i, dir := range AllDirections {
		out[i] = CanonicalEdge(EdgeCoord{Hex: h, Dir: dir})
	}
	return out
}

// EdgeEndpoints returns the two vertices joined by e.
func EdgeEndpoints(e EdgeCoord) [2]VertexCoord {
	i := int(e.Dir % 6)
	return [2]VertexCoord{Corner(e.Hex, i), Corner(e.Hex, i+1)}
}

// HexesOfEdge returns the two hexes sharing e.
func HexesOfEdge(e EdgeCoord) [2]HexCoord {
	return [2]HexCoord{e.Hex, e.Hex.Neighbor(e.Dir)}
}

// EdgeTouchesVertex reports whether v is one of the endpoints of e.
func EdgeTouchesVertex(e EdgeCoord, v VertexCoord) bool {
	v = CanonicalVertex(v)
	ends := EdgeEndpoints(CanonicalEdge(e))
	return ends[0] == v || ends[1] == v
}

func (that EdgeCoord) String() string {
	return fmt.Sprintf("%s%s", that.Hex, that.Dir)
}

// MarshalText renders "q,r,NE" for map keys.
func (that EdgeCoord) MarshalText() ([]byte, error) {
	dir, err := that.Dir.MarshalText()
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("%d,%d,%s", that.Hex.Q, that.Hex.R, dir)), nil
}

func (that *EdgeCoord) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ",")
	if len(parts) != 3 {
		return fmt.Errorf("%w: edge %q", ErrBadCoord, text)
	}

	var h HexCoord
	if err := h.UnmarshalText([]byte(parts[0] + "," + parts[1])); err != nil {
		return err
	}

	var dir Direction
	if err := dir.UnmarshalText([]byte(parts[2])); err != nil {
		return err
	}

	*that = CanonicalEdge(EdgeCoord{Hex: h, Dir: dir})
	return nil
}

func (that EdgeCoord) MarshalJSON() ([]byte, error) {
	type plain EdgeCoord
	return json.Marshal(plain(that))
}

func (that *EdgeCoord) UnmarshalJSON(data []byte) error {
	if text, ok, err := quotedText(data); ok {
		if err != nil {
			return err
		}
		return that.UnmarshalText(text)
	}

	type plain EdgeCoord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: %w", ErrBadCoord, err)
	}
	*that = CanonicalEdge(EdgeCoord(p))
	return nil
}
