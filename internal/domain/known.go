package domain

import (
	"encoding/json"
	"sort"
)

// KnownCards is the set of card indices flagged as mastered in a deck.
// It is stored as a sorted JSON array.
type KnownCards map[int]struct{}

// NewKnownCards builds a set from indices
func NewKnownCards(indices ...int) KnownCards {
	k := make(KnownCards, len(indices))
	for _, i := range indices {
		k[i] = struct{}{}
	}
	return k
}

func (k KnownCards) Has(index int) bool {
	_, ok := k[index]
	return ok
}

// With returns a copy of k including index
func (k KnownCards) With(index int) KnownCards {
	out := NewKnownCards(k.Indices()...)
	out[index] = struct{}{}
	return out
}

// Without returns a copy of k excluding index
func (k KnownCards) Without(index int) KnownCards {
	out := NewKnownCards(k.Indices()...)
	delete(out, index)
	return out
}

// ShiftAfterDelete drops a deleted card index and moves later indices down.
func (k KnownCards) ShiftAfterDelete(deleted int) KnownCards {
	out := make(KnownCards, len(k))
	for i := range k {
		switch {
		case i < deleted:
			out[i] = struct{}{}
		case i > deleted:
			out[i-1] = struct{}{}
		}
	}
	return out
}

// Indices returns the set members in ascending order
func (k KnownCards) Indices() []int {
	out := make([]int, 0, len(k))
	for i := range k {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (k KnownCards) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Indices())
}

func (k *KnownCards) UnmarshalJSON(data []byte) error {
	var indices []int
	if err := json.Unmarshal(data, &indices); err != nil {
		return err
	}
	*k = NewKnownCards(indices...)
	return nil
}
