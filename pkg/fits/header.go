package fits

// Card is one header key/value pair with an optional comment.
type Card struct {
	Name    string
	Value   any
	Comment string
}

// Header is an ordered set of cards. Order is preserved on write so the
// output header reads like the input it was inherited from.
type Header struct {
	cards []Card
}

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{}
}

// Cards returns the cards in order.
func (h *Header) Cards() []Card {
	return h.cards
}

// Get returns the value of a named card.
func (h *Header) Get(name string) (any, bool) {
	for _, c := range h.cards {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

// Has reports whether a named card exists.
func (h *Header) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// GetString returns a named card value as a string.
func (h *Header) GetString(name string) (string, bool) {
	v, ok := h.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt returns a named card value as an int64, converting from the integer
// widths a FITS parser may produce.
func (h *Header) GetInt(name string) (int64, bool) {
	v, ok := h.Get(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// Set adds a card or replaces the value and comment of an existing one,
// keeping its position.
func (h *Header) Set(name string, value any, comment string) {
	for i, c := range h.cards {
		if c.Name == name {
			h.cards[i].Value = value
			h.cards[i].Comment = comment
			return
		}
	}
	h.cards = append(h.cards, Card{Name: name, Value: value, Comment: comment})
}

// Delete removes a named card if present.
func (h *Header) Delete(name string) {
	for i, c := range h.cards {
		if c.Name == name {
			h.cards = append(h.cards[:i], h.cards[i+1:]...)
			return
		}
	}
}

// Clone returns a deep copy of the header.
func (h *Header) Clone() *Header {
	out := &Header{cards: make([]Card, len(h.cards))}
	copy(out.cards, h.cards)
	return out
}
