package world

import "fmt"

// FromRows builds a dungeon from text rows of tile characters. Rows must be the
// same width and use only '#', '.' and '+'.
func FromRows(rows []string, rooms []Room) (*Dungeon, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse dungeon: no rows")
	}
	width := len(rows[0])
	d := NewDungeon(width, len(rows), nil)
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("parse dungeon: row %d has width %d, want %d", y, len(row), width)
		}
		for x, ch := range []byte(row) {
			t := Tile(ch)
			switch t {
			case TileWall, TileFloor, TileCorridor:
				d.Tiles[y][x] = t
			default:
				return nil, fmt.Errorf("parse dungeon: unknown tile %q at (%d,%d)", ch, x, y)
			}
		}
	}
	d.Rooms = append(d.Rooms, rooms...)
	return d, nil
}

// Rows renders the tiles as text rows, the inverse of FromRows.
func (d *Dungeon) Rows() []string {
	rows := make([]string, d.Height)
	buf := make([]byte, d.Width)
	for y := range d.Height {
		for x := range d.Width {
			buf[x] = byte(d.Tiles[y][x])
		}
		rows[y] = string(buf)
	}
	return rows
}
