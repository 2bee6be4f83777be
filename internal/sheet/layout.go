package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Layout describes where the pipeline reads and writes within a row. Column
// indices are 0-based; sheet rows are 1-based. The output block is always
// Capacity+2 columns wide: start point, Capacity waypoint slots, end point.
// The first output column doubles as the already-analyzed marker.
type Layout struct {
	URLColumn   int
	OutputStart int
	Capacity    int
}

// DefaultLayout matches the production sheet: link in E, output in M..X.
var DefaultLayout = Layout{URLColumn: 4, OutputStart: 12, Capacity: 10}

// Width is the fixed number of output columns.
func (l Layout) Width() int {
	return l.Capacity + 2
}

// MarkerColumn is the cell checked to decide whether a row was already
// analyzed; it is the start-point column.
func (l Layout) MarkerColumn() int {
	return l.OutputStart
}

// RangeFor builds the A1 range covering the output block of one sheet row,
// e.g. "M2:X2" for the default layout.
func (l Layout) RangeFor(rowNumber int) string {
	return fmt.Sprintf("%s%d:%s%d",
		columnLetter(l.OutputStart), rowNumber,
		columnLetter(l.OutputStart+l.Width()-1), rowNumber)
}

func columnLetter(idx int) string {
	name, err := excelize.ColumnNumberToName(idx + 1)
	if err != nil {
		return ""
	}
	return name
}
