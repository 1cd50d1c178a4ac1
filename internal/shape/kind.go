package shape

import (
	"errors"
	"fmt"
	"strings"
)

// Kind selects which target distribution the generator produces.
type Kind uint8

const (
	Heart Kind = iota
	Flower
	Saturn
	MeditatingFigure
	Firework
)

// ErrUnknownShape is returned by Parse for names that match no Kind.
var ErrUnknownShape = errors.New("unknown shape")

var kindNames = [...]string{
	Heart:            "Heart",
	Flower:           "Flower",
	Saturn:           "Saturn",
	MeditatingFigure: "Meditate",
	Firework:         "Firework",
}

// All returns every shape in display order.
func All() []Kind {
	return []Kind{Heart, Flower, Saturn, MeditatingFigure, Firework}
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is one of the enumerated shapes.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// Next returns the shape after k in display order, wrapping around.
func (k Kind) Next() Kind {
	if !k.Valid() {
		return Heart
	}
	return Kind((int(k) + 1) % len(kindNames))
}

// Parse resolves a display name (case-insensitive). "Buddha" and
// "MeditatingFigure" are accepted for the meditating figure.
func Parse(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "buddha", "meditatingfigure", "meditating_figure", "meditating-figure":
		return MeditatingFigure, nil
	}
	for i, s := range kindNames {
		if strings.ToLower(s) == n {
			return Kind(i), nil
		}
	}
	return Firework, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
