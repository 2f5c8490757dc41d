package game

import (
	"context"
	"fmt"

	"github.com/samdwyer/dualcrawl/internal/entity"
	"github.com/samdwyer/dualcrawl/internal/event"
	"github.com/samdwyer/dualcrawl/internal/state"
)

// SelectionType is the kind of item a selection chooses from.
type SelectionType int

const (
	// SelectFood chooses food to eat.
	SelectFood SelectionType = iota
	// SelectWeapon chooses a weapon to wield, or none.
	SelectWeapon
	// SelectElixir chooses an elixir to drink.
	SelectElixir
	// SelectScroll chooses a scroll to read.
	SelectScroll
)

// String returns the lowercase item kind.
func (t SelectionType) String() string {
	return t.ItemKind().String()
}

// ItemKind returns the backpack slot the selection draws from.
func (t SelectionType) ItemKind() entity.ItemKind {
	switch t {
	case SelectWeapon:
		return entity.ItemWeapon
	case SelectElixir:
		return entity.ItemElixir
	case SelectScroll:
		return entity.ItemScroll
	default:
		return entity.ItemFood
	}
}

// MarshalText encodes the type by item kind name.
func (t SelectionType) MarshalText() ([]byte, error) {
	return t.ItemKind().MarshalText()
}

// UnmarshalText decodes an item kind name.
func (t *SelectionType) UnmarshalText(text []byte) error {
	var kind entity.ItemKind
	if err := kind.UnmarshalText(text); err != nil {
		return err
	}
	for _, st := range []SelectionType{SelectFood, SelectWeapon, SelectElixir, SelectScroll} {
		if st.ItemKind() == kind {
			*t = st
			return nil
		}
	}
	return fmt.Errorf("no selection for item kind %q", text)
}

// SelectionRequest is the item choice the player is being asked to make.
type SelectionRequest struct {
	Type      SelectionType `json:"type"`
	Items     []entity.Item `json:"items"`
	Title     string        `json:"title"`
	AllowNone bool          `json:"allow_none"`
}

// Inventory opens item selections and applies the player's choice.
type Inventory struct {
	s *Session
}

// NewInventory creates the inventory handler for s.
func NewInventory(s *Session) *Inventory {
	return &Inventory{s: s}
}

// Request opens a selection of type t. It fails with a message when there is
// nothing to choose. Opening a selection does not consume a turn.
func (inv *Inventory) Request(ctx context.Context, t SelectionType) error {
	s := inv.s
	c := s.Character
	items := c.Backpack.List(t.ItemKind())
	req := &SelectionRequest{Type: t, Items: items}

	switch t {
	case SelectFood:
		req.Title = "Select Food to Consume"
	case SelectWeapon:
		req.Title = "Select Weapon to Equip (0 to unequip current)"
		req.AllowNone = true
	case SelectElixir:
		req.Title = "Select Elixir to Drink"
	case SelectScroll:
		req.Title = "Select Scroll to Read"
	}

	if len(items) == 0 && !(req.AllowNone && c.Weapon != nil) {
		switch t {
		case SelectWeapon:
			s.Messages.Add("No weapons available!")
		default:
			s.Messages.Add(fmt.Sprintf("No %s in backpack!", pluralKind(t)))
		}
		return nil
	}

	if err := s.transition(ctx, state.ItemSelection, "choosing "+t.String()); err != nil {
		return fmt.Errorf("open %s selection: %w", t, err)
	}
	s.Pending = req
	s.Messages.Add(req.Title)
	return nil
}

// Pending returns the open selection, or nil.
func (inv *Inventory) Pending() *SelectionRequest {
	return inv.s.Pending
}

// Complete applies choice to the open selection, or cancels it when chosen is
// false. It reports whether a turn was spent.
func (inv *Inventory) Complete(ctx context.Context, choice int, chosen bool) (bool, error) {
	s := inv.s
	req := s.Pending
	if req == nil {
		return false, nil
	}
	s.Pending = nil

	used := false
	if !chosen {
		s.Messages.Add(fmt.Sprintf("Cancelled %s selection.", req.Type))
	} else {
		used = inv.apply(ctx, req, choice)
	}
	if err := s.transition(ctx, state.Playing, "selection closed"); err != nil {
		return false, fmt.Errorf("close %s selection: %w", req.Type, err)
	}
	return used, nil
}

func (inv *Inventory) apply(ctx context.Context, req *SelectionRequest, choice int) bool {
	s := inv.s
	c := s.Character
	kind := req.Type.ItemKind()

	if choice == NoneChoice && req.AllowNone {
		return inv.unequip(ctx)
	}
	item, ok := c.Backpack.Remove(kind, choice)
	if !ok {
		s.Messages.Add("Invalid selection!")
		return false
	}

	switch req.Type {
	case SelectFood:
		s.Messages.Add(c.Eat(item))
	case SelectElixir:
		s.Messages.Add(c.Drink(item))
	case SelectScroll:
		s.Messages.Add(c.Read(item))
	case SelectWeapon:
		old, msg := c.Equip(item)
		if old != nil && !c.Backpack.Add(*old) {
			if inv.drop(*old) {
				msg += " - old weapon dropped (backpack full)"
			} else {
				msg += " - old weapon vanished (no space)!"
			}
		}
		s.Messages.Add(msg)
	}
	s.publish(ctx, event.ItemUsed{Item: item})
	return true
}

func (inv *Inventory) unequip(ctx context.Context) bool {
	s := inv.s
	old, msg := s.Character.Unequip()
	if old == nil {
		s.Messages.Add(msg)
		return false
	}
	if inv.drop(*old) {
		msg += " - dropped on ground"
	} else {
		msg += " - no space to drop!"
	}
	s.Messages.Add(msg)
	return true
}

// drop puts item on a free cell next to the character.
func (inv *Inventory) drop(item entity.Item) bool {
	p, ok := inv.s.Level.FreeNeighbor(inv.s.Character.GridPosition())
	if !ok {
		return false
	}
	inv.s.Level.DropItem(item.At(p))
	return true
}

func pluralKind(t SelectionType) string {
	switch t {
	case SelectElixir:
		return "elixirs"
	case SelectScroll:
		return "scrolls"
	default:
		return "food"
	}
}
