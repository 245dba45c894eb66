package svgio

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/tableplan/tableplan/internal/geometry"
)

type xformScannerState int

const (
	xfsName xformScannerState = 1 + iota
	xfsBra
	xfsMaybeComma
	xfsArg
)

// parseTransform reads an SVG transform list: translate, scale, rotate and
// matrix, applied in document order.
func parseTransform(x string) (geometry.Matrix2D, error) {
	xf := geometry.Identity()
	if strings.TrimSpace(x) == "" {
		return xf, nil
	}

	var s scanner.Scanner
	s.Init(strings.NewReader(x))
	s.Mode = scanner.ScanIdents | scanner.ScanFloats | scanner.ScanInts
	s.Error = func(*scanner.Scanner, string) {}

	state := xfsName
	fname := ""
	negate := false
	var args []float64

	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		switch state {
		case xfsName:
			if tok == ',' {
				continue
			}
			if tok != scanner.Ident {
				return xf, fmt.Errorf("transform: expected function name, got %q", s.TokenText())
			}
			fname = s.TokenText()
			state = xfsBra
		case xfsBra:
			if tok != '(' {
				return xf, fmt.Errorf("transform: expected (, got %q", s.TokenText())
			}
			state = xfsArg
		case xfsMaybeComma:
			if tok == ',' {
				state = xfsArg
				continue
			}
			fallthrough
		case xfsArg:
			switch {
			case tok == ')' && !negate:
				m, err := singleTransform(fname, args)
				if err != nil {
					return xf, err
				}
				xf = xf.Multiply(m)
				state = xfsName
				args = nil
			case tok == '-' && !negate:
				negate = true
			case tok == '+' && !negate:
			case tok == scanner.Float || tok == scanner.Int:
				v, err := strconv.ParseFloat(s.TokenText(), 64)
				if err != nil {
					return xf, fmt.Errorf("transform: %w", err)
				}
				if negate {
					v = -v
					negate = false
				}
				args = append(args, v)
				state = xfsMaybeComma
			default:
				return xf, fmt.Errorf("transform: unexpected %q in %q", s.TokenText(), x)
			}
		}
	}
	if state != xfsName {
		return xf, fmt.Errorf("transform: unterminated %q", x)
	}
	return xf, nil
}

func singleTransform(name string, a []float64) (geometry.Matrix2D, error) {
	switch name {
	case "translate":
		switch len(a) {
		case 1:
			return geometry.TranslateMatrix(a[0], 0), nil
		case 2:
			return geometry.TranslateMatrix(a[0], a[1]), nil
		}
	case "scale":
		switch len(a) {
		case 1:
			return geometry.ScaleMatrix(a[0], a[0]), nil
		case 2:
			return geometry.ScaleMatrix(a[0], a[1]), nil
		}
	case "rotate":
		switch len(a) {
		case 1:
			return geometry.RotateDegrees(a[0]), nil
		case 3:
			return geometry.RotateAbout(a[0], vec(a[1], a[2])), nil
		}
	case "matrix":
		if len(a) == 6 {
			return geometry.Matrix2D{a[0], a[1], a[2], a[3], a[4], a[5]}, nil
		}
	default:
		return geometry.Identity(), fmt.Errorf("transform: unsupported function %q", name)
	}
	return geometry.Identity(), fmt.Errorf("transform: %s takes a different number of arguments, got %d", name, len(a))
}
