package hexgrid

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrBadCoord = errors.New("malformed coordinate")

// Direction names one of the six sides of a pointy-top hex, clockwise from north-east.
type Direction uint8

const (
	NorthEast Direction = iota
	East
	SouthEast
	SouthWest
	West
	NorthWest
)

// AllDirections lists the six sides in clockwise order.
var AllDirections = [6]Direction{NorthEast, East, SouthEast, SouthWest, West, NorthWest}

var directionNames = [6]string{"NE", "E", "SE", "SW", "W", "NW"}

// axial offsets, indexed by Direction.
var offsets = [6][2]int{
	{1, -1},
	{1, 0},
	{0, 1},
	{-1, 1},
	{-1, 0},
	{0, -1},
}

func (that Direction) String() string {
	if int(that) < len(directionNames) {
		return directionNames[that]
	}
	return fmt.Sprintf("Direction(%d)", uint8(that))
}

// Opposite returns the side facing this one.
func (that Direction) Opposite() Direction {
	return (that + 3) % 6
}

func (that Direction) MarshalText() ([]byte, error) {
	if int(that) >= len(directionNames) {
		return nil, fmt.Errorf("%w: direction %d", ErrBadCoord, that)
	}
	return []byte(directionNames[that]), nil
}

func (that *Direction) UnmarshalText(text []byte) error {
	for i, name := range directionNames {
		if name == string(text) {
			*that = Direction(i)
			return nil
		}
	}
	return fmt.Errorf("%w: direction %q", ErrBadCoord, text)
}

// HexCoord is an axial tile address.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

func NewHex(q, r int) HexCoord {
	return HexCoord{Q: q, R: r}
}

// S is the implicit third cube coordinate.
func (that HexCoord) S() int {
	return -that.Q - that.R
}

func (that HexCoord) Neighbor(dir Direction) HexCoord {
	off := offsets[dir%6]
	return HexCoord{Q: that.Q + off[0], R: that.R + off[1]}
}

func (that HexCoord) Distance(other HexCoord) int {
	dq := abs(that.Q - other.Q)
	dr := abs(that.R - other.R)
	ds := abs(that.S() - other.S())
	return max(dq, dr, ds)
}

func (that HexCoord) String() string {
	return fmt.Sprintf("(%d,%d)", that.Q, that.R)
}

// Neighbors returns the six adjacent hexes in Direction order.
func Neighbors(h HexCoord) [6]HexCoord {
	var out [6]HexCoord
	for i, dir := range AllDirections {
		out[i] = h.Neighbor(dir)
	}
	return out
}

// Ring returns the hexes at exactly radius steps from center, starting east and turning north.
func Ring(center HexCoord, radius int) []HexCoord {
	if radius == 0 {
		return []HexCoord{center}
	}

	out := make([]HexCoord, 0, 6*radius)
	cur := HexCoord{Q: center.Q + radius, R: center.R}
	walk := [6]Direction{NorthWest, West, SouthWest, SouthEast, East, NorthEast}
	for _, dir := range walk {
		for range radius {
			out = append(out, cur)
			cur = cur.Neighbor(dir)
		}
	}
	return out
}

// MarshalText renders "q,r"; it is what map keys use.
func (that HexCoord) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d,%d", that.Q, that.R)), nil
}

func (that *HexCoord) UnmarshalText(text []byte) error {
	var q, r int
	if _, err := fmt.Sscanf(string(text), "%d,%d", &q, &r); err != nil {
		return fmt.Errorf("%w: hex %q", ErrBadCoord, text)
	}
	*that = HexCoord{Q: q, R: r}
	return nil
}

// MarshalJSON keeps the object form for values even though map keys use text.
func (that HexCoord) MarshalJSON() ([]byte, error) {
	type plain HexCoord
	return json.Marshal(plain(that))
}

// UnmarshalJSON accepts the object form and the quoted text form map keys are decoded with.
func (that *HexCoord) UnmarshalJSON(data []byte) error {
	if text, ok, err := quotedText(data); ok {
		if err != nil {
			return err
		}
		return that.UnmarshalText(text)
	}

	type plain HexCoord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: %w", ErrBadCoord, err)
	}
	*that = HexCoord(p)
	return nil
}

// quotedText unwraps a JSON string; ok is false when data is not one.
func quotedText(data []byte) ([]byte, bool, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return nil, false, nil
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return nil, true, fmt.Errorf("%w: %w", ErrBadCoord, err)
	}
	return []byte(text), true, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
