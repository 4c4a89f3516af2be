package ncerr

import (
	"encoding/xml"
	"fmt"
)

// Location is a position within a decoded XML document.
type Location struct {
	// Line and Column are 1-based. Column is zero when unknown.
	Line, Column int
	// Offset is the byte offset from the start of the input.
	Offset int64
}

func (l Location) String() string {
	if l.Column > 0 {
		return fmt.Sprintf("line %d column %d (offset %d)", l.Line, l.Column, l.Offset)
	}
	return fmt.Sprintf("line %d (offset %d)", l.Line, l.Offset)
}

// DecoderLocation returns the current location of the XML decoder d.
func DecoderLocation(d *xml.Decoder) Location {
	line, col := d.InputPos()
	return Location{Line: line, Column: col, Offset: d.InputOffset()}
}
