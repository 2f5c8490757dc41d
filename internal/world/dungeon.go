package world

import (
	"context"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/dualcrawl/internal/telemetry"
)

const (
	// Default dungeon dimensions
	DefaultWidth  = 80
	DefaultHeight = 24

	// BSP parameters
	minRoomSize = 4  // Minimum room dimension
	maxRoomSize = 12 // Maximum room dimension
	minLeafSize = 8  // Minimum BSP leaf size before stopping split
)

// Dungeon is the tile layout of one level.
type Dungeon struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Tiles  [][]Tile `json:"tiles"`
	Rooms  []Room   `json:"rooms"`
	rng    *rand.Rand
}

// NewDungeon creates a dungeon filled with walls. Generation draws from rng.
func NewDungeon(width, height int, rng *rand.Rand) *Dungeon {
	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = TileWall
		}
	}

	return &Dungeon{
		Width:  width,
		Height: height,
		Tiles:  tiles,
		Rooms:  make([]Room, 0),
		rng:    rng,
	}
}

// Generate creates the dungeon layout using BSP.
func (d *Dungeon) Generate(ctx context.Context) {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "dungeon.generate")
	defer span.End()

	startTime := time.Now()

	root := &bspNode{
		x:      1,
		y:      1,
		width:  d.Width - 2,
		height: d.Height - 2,
	}

	d.splitNode(root)
	d.createRooms(root)
	d.connectRooms(root)

	span.SetAttributes(
		attribute.Int("dungeon.width", d.Width),
		attribute.Int("dungeon.height", d.Height),
		attribute.Int("dungeon.room_count", len(d.Rooms)),
		attribute.Int64("dungeon.generation_ms", time.Since(startTime).Milliseconds()),
	)
}

// InBounds reports whether p lies on the map.
func (d *Dungeon) InBounds(p Position) bool {
	return p.X >= 0 && p.X < d.Width && p.Y >= 0 && p.Y < d.Height
}

// IsPassable returns true if the given cell can be walked on.
func (d *Dungeon) IsPassable(p Position) bool {
	if !d.InBounds(p) {
		return false
	}
	return d.Tiles[p.Y][p.X].IsPassable()
}

// Tile returns the tile at p; out-of-bounds cells read as wall.
func (d *Dungeon) Tile(p Position) Tile {
	if !d.InBounds(p) {
		return TileWall
	}
	return d.Tiles[p.Y][p.X]
}

// RoomIndexAt returns the index of the room containing p, or -1 if not in a room.
func (d *Dungeon) RoomIndexAt(p Position) int {
	for i, room := range d.Rooms {
		if room.Contains(p) {
			return i
		}
	}
	return -1
}

// RandomPointInRoom returns a random passable cell within the specified room.
func (d *Dungeon) RandomPointInRoom(rng *rand.Rand, roomIndex int) (Position, bool) {
	if roomIndex < 0 || roomIndex >= len(d.Rooms) {
		return Position{}, false
	}
	room := d.Rooms[roomIndex]

	for i := 0; i < 100; i++ {
		p := Position{X: room.X + rng.Intn(room.Width), Y: room.Y + rng.Intn(room.Height)}
		if d.IsPassable(p) {
			return p, true
		}
	}

	return room.Center(), d.IsPassable(room.Center())
}

// bspNode represents a node in the BSP tree.
type bspNode struct {
	x, y          int
	width, height int
	left, right   *bspNode
	room          *Room
}

func (n *bspNode) isLeaf() bool {
	return n.left == nil && n.right == nil
}

// splitNode recursively splits a BSP node.
func (d *Dungeon) splitNode(node *bspNode) {
	if node.width < minLeafSize*2 && node.height < minLeafSize*2 {
		return
	}

	var splitHorizontally bool
	switch {
	case node.width > node.height && node.width >= minLeafSize*2:
		splitHorizontally = false
	case node.height >= minLeafSize*2:
		splitHorizontally = true
	case node.width >= minLeafSize*2:
		splitHorizontally = false
	default:
		return
	}

	span := node.width
	if splitHorizontally {
		span = node.height
	}
	lo, hi := minLeafSize, span-minLeafSize
	if hi <= lo {
		return
	}
	splitPos := lo + d.rng.Intn(hi-lo+1)

	if splitHorizontally {
		node.left = &bspNode{x: node.x, y: node.y, width: node.width, height: splitPos}
		node.right = &bspNode{x: node.x, y: node.y + splitPos, width: node.width, height: node.height - splitPos}
	} else {
		node.left = &bspNode{x: node.x, y: node.y, width: splitPos, height: node.height}
		node.right = &bspNode{x: node.x + splitPos, y: node.y, width: node.width - splitPos, height: node.height}
	}

	d.splitNode(node.left)
	d.splitNode(node.right)
}

// createRooms places one room in every BSP leaf.
func (d *Dungeon) createRooms(node *bspNode) {
	if node == nil {
		return
	}
	if !node.isLeaf() {
		d.createRooms(node.left)
		d.createRooms(node.right)
		return
	}

	roomWidth := minRoomSize + d.rng.Intn(min(maxRoomSize-minRoomSize+1, node.width-minRoomSize+1))
	roomHeight := minRoomSize + d.rng.Intn(min(maxRoomSize-minRoomSize+1, node.height-minRoomSize+1))
	roomWidth = min(roomWidth, node.width-2)
	roomHeight = min(roomHeight, node.height-2)
	if roomWidth < minRoomSize || roomHeight < minRoomSize {
		return
	}

	room := Room{
		X:      node.x + 1 + d.rng.Intn(node.width-roomWidth-1),
		Y:      node.y + 1 + d.rng.Intn(node.height-roomHeight-1),
		Width:  roomWidth,
		Height: roomHeight,
	}
	node.room = &room
	d.Rooms = append(d.Rooms, room)
	d.carveRoom(room)
}

func (d *Dungeon) carveRoom(room Room) {
	for y := room.Y; y < room.Y+room.Height; y++ {
		for x := room.X; x < room.X+room.Width; x++ {
			d.carve(Position{X: x, Y: y}, TileFloor)
		}
	}
}

// connectRooms joins sibling subtrees with corridors.
func (d *Dungeon) connectRooms(node *bspNode) {
	if node == nil || node.isLeaf() {
		return
	}

	d.connectRooms(node.left)
	d.connectRooms(node.right)

	leftRoom := d.anyRoom(node.left)
	rightRoom := d.anyRoom(node.right)
	if leftRoom != nil && rightRoom != nil {
		d.carveCorridor(leftRoom.Center(), rightRoom.Center())
	}
}

func (d *Dungeon) anyRoom(node *bspNode) *Room {
	if node == nil {
		return nil
	}
	if node.room != nil {
		return node.room
	}
	if room := d.anyRoom(node.left); room != nil {
		return room
	}
	return d.anyRoom(node.right)
}

// carveCorridor digs an L-shaped corridor between two cells.
func (d *Dungeon) carveCorridor(a, b Position) {
	if d.rng.Intn(2) == 0 {
		d.carveHorizontal(a.X, b.X, a.Y)
		d.carveVertical(a.Y, b.Y, b.X)
	} else {
		d.carveVertical(a.Y, b.Y, a.X)
		d.carveHorizontal(a.X, b.X, b.Y)
	}
}

func (d *Dungeon) carveHorizontal(x1, x2, y int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		d.carve(Position{X: x, Y: y}, TileCorridor)
	}
}

func (d *Dungeon) carveVertical(y1, y2, x int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		d.carve(Position{X: x, Y: y}, TileCorridor)
	}
}

// carve sets an interior tile. Corridors never overwrite room floor.
func (d *Dungeon) carve(p Position, t Tile) {
	if p.X <= 0 || p.X >= d.Width-1 || p.Y <= 0 || p.Y >= d.Height-1 {
		return
	}
	if t == TileCorridor && d.Tiles[p.Y][p.X] == TileFloor {
		return
	}
	d.Tiles[p.Y][p.X] = t
}
