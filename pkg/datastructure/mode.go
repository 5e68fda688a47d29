package datastructure

import "fmt"

// Mode is one of the fixed travel modes a street network can be weighted for.
type Mode int

const (
	ModeFoot Mode = iota
	ModeBicycle
	ModeMotorcar
)

// Modes lists every travel mode in the fixed order the orchestrator
// processes them in. Do not reorder.
var Modes = []Mode{ModeFoot, ModeBicycle, ModeMotorcar}

func (m Mode) String() string {
	switch m {
	case ModeFoot:
		return "foot"
	case ModeBicycle:
		return "bicycle"
	case ModeMotorcar:
		return "motorcar"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func ModeFromString(s string) (Mode, error) {
	switch s {
	case "foot":
		return ModeFoot, nil
	case "bicycle":
		return ModeBicycle, nil
	case "motorcar":
		return ModeMotorcar, nil
	}
	return 0, fmt.Errorf("unknown travel mode %q", s)
}

// ModePairs returns every ordered pair (a, b) of distinct modes.
// Pairs are directional: the (a, b) vertex index maps each a-vertex to its
// nearest b-vertex, which is not the inverse of the (b, a) index.
func ModePairs() [][2]Mode {
	pairs := make([][2]Mode, 0, len(Modes)*(len(Modes)-1))
	for _, a := range Modes {
		for _, b := range Modes {
			if a == b {
				continue
			}
			pairs = append(pairs, [2]Mode{a, b})
		}
	}
	return pairs
}
