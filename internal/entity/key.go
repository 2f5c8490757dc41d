package entity

import "fmt"

// KeyColor pairs a key with the doors it opens.
type KeyColor int

const (
	// KeyNone is the color of every item that is not a key.
	KeyNone KeyColor = iota
	// KeyRed opens red doors.
	KeyRed
	// KeyBlue opens blue doors.
	KeyBlue
	// KeyYellow opens yellow doors.
	KeyYellow
	// KeyGreen opens green doors.
	KeyGreen
	// KeyPurple opens purple doors.
	KeyPurple
)

// KeyColors lists the key colors in the order levels hand them out.
var KeyColors = []KeyColor{KeyRed, KeyBlue, KeyYellow, KeyGreen, KeyPurple}

// String returns the color name.
func (c KeyColor) String() string {
	switch c {
	case KeyNone:
		return "none"
	case KeyRed:
		return "red"
	case KeyBlue:
		return "blue"
	case KeyYellow:
		return "yellow"
	case KeyGreen:
		return "green"
	case KeyPurple:
		return "purple"
	default:
		return "unknown"
	}
}

// MarshalText encodes the color by name.
func (c KeyColor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a color name.
func (c *KeyColor) UnmarshalText(text []byte) error {
	for _, color := range append([]KeyColor{KeyNone}, KeyColors...) {
		if color.String() == string(text) {
			*c = color
			return nil
		}
	}
	return fmt.Errorf("unknown key color %q", text)
}

// NewKey creates the key for doors of color.
func NewKey(color KeyColor) Item {
	return Item{Kind: ItemKey, Name: color.String() + " key", Color: color}
}
