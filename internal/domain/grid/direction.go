package grid

import "fmt"

type Direction uint8

const (
	North Direction = iota
	West
	East
	South
)

// Directions lists the four directions in expansion order.
var Directions = [4]Direction{North, West, East, South}

func (d Direction) Delta() (int, int) {
	switch d {
	case North:
		return -1, 0
	case West:
		return 0, -1
	case East:
		return 0, 1
	case South:
		return 1, 0
	default:
		panic(fmt.Sprintf("grid: invalid direction %d", d))
	}
}

func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case West:
		return East
	case East:
		return West
	default:
		return North
	}
}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case West:
		return "W"
	case East:
		return "E"
	case South:
		return "S"
	default:
		return "?"
	}
}

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "N":
		return North, nil
	case "W":
		return West, nil
	case "E":
		return East, nil
	case "S":
		return South, nil
	default:
		return 0, fmt.Errorf("%w: direction %q", ErrInvalidAction, s)
	}
}
