package hexgrid

import (
	"encoding/json"
	"fmt"
	"strings"
)

// VertexDirection selects the top or bottom corner of a pointy-top hex.
type VertexDirection uint8

const (
	North VertexDirection = iota
	South
)

func (that VertexDirection) String() string {
	if that == South {
		return "S"
	}
	return "N"
}

func (that VertexDirection) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *VertexDirection) UnmarshalText(text []byte) error {
	switch string(text) {
	case "N", "North":
		*that = North
	case "S", "South":
		*that = South
	default:
		return fmt.Errorf("%w: vertex direction %q", ErrBadCoord, text)
	}
	return nil
}

// VertexCoord addresses a vertex as the north or south corner of a hex.
//
// Every physical vertex is the top corner of exactly one hex or the bottom corner of exactly one
// hex, never both, so the north/south form is already a unique identity. The four side corners of
// a hex are reached through Corner, which folds them onto that form.
type VertexCoord struct {
	Hex HexCoord        `json:"hex"`
	Dir VertexDirection `json:"direction"`
}

func NewVertex(h HexCoord, dir VertexDirection) VertexCoord {
	return VertexCoord{Hex: h, Dir: dir}
}

// Corner returns the canonical vertex for corner i of h, counted clockwise from the top (0..5).
func Corner(h HexCoord, i int) VertexCoord {
	switch ((i % 6) + 6) % 6 {
	case 0:
		return VertexCoord{Hex: h, Dir: North}
	case 1:
		return VertexCoord{Hex: h.Neighbor(NorthEast), Dir: South}
	case 2:
		return VertexCoord{Hex: h.Neighbor(SouthEast), Dir: North}
	case 3:
		return VertexCoord{Hex: h, Dir: South}
	case 4:
		return VertexCoord{Hex: h.Neighbor(SouthWest), Dir: North}
	default:
		return VertexCoord{Hex: h.Neighbor(NorthWest), Dir: South}
	}
}

// CanonicalVertex returns the stable key for v. Values outside North/South are folded to North.
func CanonicalVertex(v VertexCoord) VertexCoord {
	if v.Dir != South {
		v.Dir = North
	}
	return v
}

// VerticesOfHex returns the six corners of h, clockwise from the top.
func VerticesOfHex(h HexCoord) [6]VertexCoord {
	var out [6]VertexCoord
	for i := range out {
		out[i] = Corner(h, i)
	}
	return out
}

// HexesTouchingVertex returns the three hexes sharing v.
func HexesTouchingVertex(v VertexCoord) [3]HexCoord {
	v = CanonicalVertex(v)
	if v.Dir == North {
		return [3]HexCoord{v.Hex, v.Hex.Neighbor(NorthWest), v.Hex.Neighbor(NorthEast)}
	}
	return [3]HexCoord{v.Hex, v.Hex.Neighbor(SouthWest), v.Hex.Neighbor(SouthEast)}
}

// EdgesOfVertex returns the three canonical edges meeting at v.
func EdgesOfVertex(v VertexCoord) [3]EdgeCoord {
	v = CanonicalVertex(v)
	if v.Dir == North {
		return [3]EdgeCoord{
			CanonicalEdge(EdgeCoord{Hex: v.Hex, Dir: NorthWest}),
			CanonicalEdge(EdgeCoord{Hex: v.Hex, Dir: NorthEast}),
			CanonicalEdge(EdgeCoord{Hex: v.Hex.Neighbor(NorthWest), Dir: East}),
		}
	}
	return [3]EdgeCoord{
		CanonicalEdge(EdgeCoord{Hex: v.Hex, Dir: SouthWest}),
		CanonicalEdge(EdgeCoord{Hex: v.Hex, Dir: SouthEast}),
		CanonicalEdge(EdgeCoord{Hex: v.Hex.Neighbor(SouthWest), Dir: East}),
	}
}

// AdjacentVertices returns the three vertices one edge away from v.
func AdjacentVertices(v VertexCoord) [3]VertexCoord {
	v = CanonicalVertex(v)
	var out [3]VertexCoord
	for i, e := range EdgesOfVertex(v) {
		ends := EdgeEndpoints(e)
		if ends[0] == v {
			out[i] = ends[1]
		} else {
			out[i] = ends[0]
		}
	}
	return out
}

func (that VertexCoord) String() string {
	return fmt.Sprintf("%s%s", that.Hex, that.Dir)
}

// MarshalText renders "q,r,N" for map keys.
func (that VertexCoord) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d,%d,%s", that.Hex.Q, that.Hex.R, that.Dir)), nil
}

func (that *VertexCoord) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ",")
	if len(parts) != 3 {
		return fmt.Errorf("%w: vertex %q", ErrBadCoord, text)
	}

	var h HexCoord
	if err := h.UnmarshalText([]byte(parts[0] + "," + parts[1])); err != nil {
		return err
	}

	var dir VertexDirection
	if err := dir.UnmarshalText([]byte(parts[2])); err != nil {
		return err
	}

	*that = CanonicalVertex(VertexCoord{Hex: h, Dir: dir})
	return nil
}

func (that VertexCoord) MarshalJSON() ([]byte, error) {
	type plain VertexCoord
	return json.Marshal(plain(that))
}

func (that *VertexCoord) UnmarshalJSON(data []byte) error {
	if text, ok, err := quotedText(data); ok {
		if err != nil {
			return err
		}
		return that.UnmarshalText(text)
	}

	type plain VertexCoord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: %w", ErrBadCoord, err)
	}
	*that = CanonicalVertex(VertexCoord(p))
	return nil
}
