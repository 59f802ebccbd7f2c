package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is a CSS filter function.
type Kind string

const (
	Contrast   Kind = "contrast"
	Saturate   Kind = "saturate"
	Brightness Kind = "brightness"
	HueRotate  Kind = "hue-rotate"
	Sepia      Kind = "sepia"
	Grayscale  Kind = "grayscale"
)

// Func is one CSS filter function with its argument.
// Amount is a ratio for every kind except HueRotate, where it is degrees.
type Func struct {
	Kind   Kind
	Amount float64
}

func (f Func) String() string {
	if f.Kind == HueRotate {
		return fmt.Sprintf("%s(%gdeg)", f.Kind, f.Amount)
	}
	return fmt.Sprintf("%s(%g)", f.Kind, f.Amount)
}

// affine is a 3x4 row-major colour matrix: rgb' = M * [r g b 1].
type affine [12]float64

func (m affine) apply(r, g, b float64) (float64, float64, float64) {
	return clamp01(m[0]*r + m[1]*g + m[2]*b + m[3]),
		clamp01(m[4]*r + m[5]*g + m[6]*b + m[7]),
		clamp01(m[8]*r + m[9]*g + m[10]*b + m[11])
}

// matrix returns the Filter Effects colour matrix of f.
func (f Func) matrix() affine {
	a := f.Amount
	switch f.Kind {
	case Contrast:
		o := 0.5 - 0.5*a
		return affine{a, 0, 0, o, 0, a, 0, o, 0, 0, a, o}
	case Brightness:
		return affine{a, 0, 0, 0, 0, a, 0, 0, 0, 0, a, 0}
	case Saturate:
		return affine{
			0.213 + 0.787*a, 0.715 - 0.715*a, 0.072 - 0.072*a, 0,
			0.213 - 0.213*a, 0.715 + 0.285*a, 0.072 - 0.072*a, 0,
			0.213 - 0.213*a, 0.715 - 0.715*a, 0.072 + 0.928*a, 0,
		}
	case HueRotate:
		rad := a * math.Pi / 180
		c, s := math.Cos(rad), math.Sin(rad)
		return affine{
			0.213 + c*0.787 - s*0.213, 0.715 - c*0.715 - s*0.715, 0.072 - c*0.072 + s*0.928, 0,
			0.213 - c*0.213 + s*0.143, 0.715 + c*0.285 + s*0.140, 0.072 - c*0.072 - s*0.283, 0,
			0.213 - c*0.213 - s*0.787, 0.715 - c*0.715 + s*0.715, 0.072 + c*0.928 + s*0.072, 0,
		}
	case Sepia:
		n := 1 - clamp01(a)
		return affine{
			0.393 + 0.607*n, 0.769 - 0.769*n, 0.189 - 0.189*n, 0,
			0.349 - 0.349*n, 0.686 + 0.314*n, 0.168 - 0.168*n, 0,
			0.272 - 0.272*n, 0.534 - 0.534*n, 0.131 + 0.869*n, 0,
		}
	case Grayscale:
		n := 1 - clamp01(a)
		return affine{
			0.2126 + 0.7874*n, 0.7152 - 0.7152*n, 0.0722 - 0.0722*n, 0,
			0.2126 - 0.2126*n, 0.7152 + 0.2848*n, 0.0722 - 0.0722*n, 0,
			0.2126 - 0.2126*n, 0.7152 - 0.7152*n, 0.0722 + 0.9278*n, 0,
		}
	default:
		return affine{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0}
	}
}

// ParseFilters parses a CSS filter list such as
// "contrast(1.2) brightness(110%) hue-rotate(15deg)".
func ParseFilters(s string) ([]Func, error) {
	var funcs []Func
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		closing := strings.IndexByte(rest, ')')
		if open <= 0 || closing < open {
			return nil, fmt.Errorf("filter: malformed function in %q", rest)
		}
		name := strings.ToLower(strings.TrimSpace(rest[:open]))
		arg := strings.TrimSpace(rest[open+1 : closing])
		rest = strings.TrimSpace(rest[closing+1:])

		f, err := parseFunc(Kind(name), arg)
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, f)
	}
	return funcs, nil
}

func parseFunc(kind Kind, arg string) (Func, error) {
	switch kind {
	case Contrast, Saturate, Brightness, Sepia, Grayscale:
		v, err := parseAmount(arg)
		if err != nil {
			return Func{}, fmt.Errorf("filter: %s: %w", kind, err)
		}
		return Func{Kind: kind, Amount: v}, nil
	case HueRotate:
		v, err := parseAngle(arg)
		if err != nil {
			return Func{}, fmt.Errorf("filter: %s: %w", kind, err)
		}
		return Func{Kind: kind, Amount: v}, nil
	default:
		return Func{}, fmt.Errorf("filter: unsupported function %q", kind)
	}
}

func parseAmount(arg string) (float64, error) {
	if arg == "" {
		return 1, nil
	}
	if p, ok := strings.CutSuffix(arg, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, err
		}
		return checkNonNegative(v / 100)
	}
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, err
	}
	return checkNonNegative(v)
}

func checkNonNegative(v float64) (float64, error) {
	if v < 0 {
		return 0, fmt.Errorf("negative amount %g", v)
	}
	return v, nil
}

func parseAngle(arg string) (float64, error) {
	if arg == "" || arg == "0" {
		return 0, nil
	}
	units := []struct {
		suffix string
		factor float64
	}{
		{"deg", 1},
		{"grad", 0.9},
		{"rad", 180 / math.Pi},
		{"turn", 360},
	}
	for _, u := range units {
		if p, ok := strings.CutSuffix(arg, u.suffix); ok {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return 0, err
			}
			return v * u.factor, nil
		}
	}
	return 0, fmt.Errorf("angle %q needs a unit", arg)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
