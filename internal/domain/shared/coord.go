package shared

import (
	"fmt"
	"regexp"
)

// coordPattern matches base coordinates like "A04:22:18:10"
// (galaxy letter+sector, region, system, orbit)
var coordPattern = regexp.MustCompile(`^[A-Z][0-9]{2}:[0-9]{2}:[0-9]{2}:[0-9]{2}$`)

// Coord is a value object identifying a base location
type Coord struct {
	value string
}

// NewCoord creates a new Coord value object, validating its format
func NewCoord(value string) (Coord, error) {
	if value == "" {
		return Coord{}, fmt.Errorf("coordinate cannot be empty")
	}
	if !coordPattern.MatchString(value) {
		return Coord{}, fmt.Errorf("invalid coordinate format: %s", value)
	}
	return Coord{value: value}, nil
}

// MustNewCoord creates a new Coord, panicking on invalid input
// Use this only when you're certain the coordinate is valid (e.g., from database)
func MustNewCoord(value string) Coord {
	coord, err := NewCoord(value)
	if err != nil {
		panic(err)
	}
	return coord
}

// Value returns the string value of the Coord
func (c Coord) Value() string {
	return c.value
}

// String returns a string representation of the Coord
func (c Coord) String() string {
	return c.value
}

// Equals checks if two Coords are equal
func (c Coord) Equals(other Coord) bool {
	return c.value == other.value
}

// IsZero checks if the Coord is the zero value (uninitialized)
func (c Coord) IsZero() bool {
	return c.value == ""
}
