package pch2csd

import (
	"fmt"
	"strconv"
	"strings"
)

// Location tells in which area of the patch a module lives. The voice area is
// instantiated per voice, the FX area once.
type Location int

const (
	FX Location = iota
	VA
)

var locationNames = [...]string{"fx", "va"}

func (l Location) String() string {
	if l < 0 || int(l) >= len(locationNames) {
		return "Location(" + strconv.Itoa(int(l)) + ")"
	}
	return locationNames[l]
}

func (l Location) MarshalText() ([]byte, error) {
	if l < 0 || int(l) >= len(locationNames) {
		return nil, fmt.Errorf("invalid location %d", int(l))
	}
	return []byte(locationNames[l]), nil
}

func (l *Location) UnmarshalText(text []byte) error {
	v, err := parseEnum(string(text), locationNames[:])
	if err != nil {
		return fmt.Errorf("invalid location: %v", err)
	}
	*l = Location(v)
	return nil
}

// CableColor is the color of a cable in the patch editor. Colors red and
// orange carry audio rate signals, blue and yellow control rate signals.
// The rest are user colors with no rate of their own.
type CableColor int

const (
	Red CableColor = iota
	Blue
	Yellow
	Orange
	Green
	Purple
	White
)

var cableColorNames = [...]string{"red", "blue", "yellow", "orange", "green", "purple", "white"}

func (c CableColor) String() string {
	if c < 0 || int(c) >= len(cableColorNames) {
		return "CableColor(" + strconv.Itoa(int(c)) + ")"
	}
	return cableColorNames[c]
}

func (c CableColor) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(cableColorNames) {
		return nil, fmt.Errorf("invalid cable color %d", int(c))
	}
	return []byte(cableColorNames[c]), nil
}

func (c *CableColor) UnmarshalText(text []byte) error {
	v, err := parseEnum(string(text), cableColorNames[:])
	if err != nil {
		return fmt.Errorf("invalid cable color: %v", err)
	}
	*c = CableColor(v)
	return nil
}

// Rate returns the rate of the signals carried by cables of this color.
func (c CableColor) Rate() (Rate, error) {
	switch c {
	case Red, Orange:
		return AudioRate, nil
	case Blue, Yellow:
		return ControlRate, nil
	}
	return 0, fmt.Errorf("cable color %v has no signal rate", c)
}

// Rate is the single character rate tag used in the opcode templates: 'k' for
// control rate and 'a' for audio rate signals. Templates may use other
// characters for parameters, e.g. 'i' for init time values.
type Rate byte

const (
	ControlRate Rate = 'k'
	AudioRate   Rate = 'a'
)

func (r Rate) String() string {
	return string(rune(r))
}

// parseEnum accepts either one of the names or the numeric index of a name.
func parseEnum(s string, names []string) (int, error) {
	s = strings.TrimSpace(s)
	for i, n := range names {
		if strings.EqualFold(n, s) {
			return i, nil
		}
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 && v < len(names) {
		return v, nil
	}
	return 0, fmt.Errorf("%q is not one of %v", s, strings.Join(names, ", "))
}
