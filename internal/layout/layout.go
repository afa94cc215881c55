// Package layout places a widget on the mirror's grid.
package layout

import (
	"errors"
	"fmt"
)

// Position classes understood by the mirror stylesheet.
const (
	UpperLeft   = "upper-left"
	UpperRight  = "upper-right"
	BottomLeft  = "bottom-left"
	BottomRight = "bottom-right"
	Center      = "center"
)

var ErrInvalidGrid = errors.New("invalid mirror grid")

// PositionClass returns the CSS class for cell pos of a rows x cols grid,
// cells numbered row by row from zero. Corner cells get their corner class,
// everything else is centered.
func PositionClass(rows, cols, pos int) (string, error) {
	if rows <= 0 || cols <= 0 {
		return "", fmt.Errorf("%w: %dx%d", ErrInvalidGrid, rows, cols)
	}
	if pos < 0 || pos >= rows*cols {
		return "", fmt.Errorf("%w: position %d outside %dx%d", ErrInvalidGrid, pos, rows, cols)
	}

	row, col := pos/cols, pos%cols
	lastRow, lastCol := rows-1, cols-1

	switch {
	case row == 0 && col == 0:
		return UpperLeft, nil
	case row == 0 && col == lastCol:
		return UpperRight, nil
	case row == lastRow && col == 0:
		return BottomLeft, nil
	case row == lastRow && col == lastCol:
		return BottomRight, nil
	default:
		return Center, nil
	}
}
