package entity

// MaxItemsPerKind caps every backpack slot list.
const MaxItemsPerKind = 10

// Backpack stores items by kind. Treasure is tallied, not stored.
type Backpack struct {
	Items    map[ItemKind][]Item `json:"items"`
	Treasure int                 `json:"treasure"`
}

// NewBackpack returns an empty backpack.
func NewBackpack() Backpack {
	return Backpack{Items: make(map[ItemKind][]Item)}
}

// Add stores item. It returns false when that kind is already full.
func (b *Backpack) Add(item Item) bool {
	if item.Kind == ItemTreasure {
		b.Treasure += item.Value
		return true
	}
	if b.Items == nil {
		b.Items = make(map[ItemKind][]Item)
	}
	if len(b.Items[item.Kind]) >= MaxItemsPerKind {
		return false
	}
	b.Items[item.Kind] = append(b.Items[item.Kind], item)
	return true
}

// Remove takes the item at index from the kind's list.
func (b *Backpack) Remove(kind ItemKind, index int) (Item, bool) {
	items := b.Items[kind]
	if index < 0 || index >= len(items) {
		return Item{}, false
	}
	item := items[index]
	b.Items[kind] = append(items[:index:index], items[index+1:]...)
	return item, true
}

// List returns a copy of the items of one kind.
func (b *Backpack) List(kind ItemKind) []Item {
	return append([]Item(nil), b.Items[kind]...)
}

// Count returns the number of items of kind, or the treasure total.
func (b *Backpack) Count(kind ItemKind) int {
	if kind == ItemTreasure {
		return b.Treasure
	}
	return len(b.Items[kind])
}

// HasKey reports whether a key for color is carried.
func (b *Backpack) HasKey(color KeyColor) bool {
	for _, k := range b.Items[ItemKey] {
		if k.Color == color {
			return true
		}
	}
	return false
}

// Keys returns the colors of the keys carried.
func (b *Backpack) Keys() []KeyColor {
	var out []KeyColor
	for _, k := range b.Items[ItemKey] {
		out = append(out, k.Color)
	}
	return out
}

// DropKeys discards every key. Keys open doors on their own level only.
func (b *Backpack) DropKeys() {
	delete(b.Items, ItemKey)
}
