package engagement

// DraftBook keeps the text typed into each open reply box, keyed by the
// comment being answered. The zero ID holds the new root review box.
type DraftBook struct {
	drafts map[ID]string
}

func NewDraftBook() *DraftBook {
	return &DraftBook{drafts: make(map[ID]string)}
}

func (b *DraftBook) Get(target ID) string {
	return b.drafts[target]
}

// Set stores text for target. Empty text drops the draft.
func (b *DraftBook) Set(target ID, text string) {
	if text == "" {
		delete(b.drafts, target)
		return
	}
	b.drafts[target] = text
}

func (b *DraftBook) Clear(target ID) {
	delete(b.drafts, target)
}

// Has reports whether target has unsent text
func (b *DraftBook) Has(target ID) bool {
	_, ok := b.drafts[target]
	return ok
}

func (b *DraftBook) Len() int {
	return len(b.drafts)
}
