// Package shopping merges cart ingredient lines into a shopping list and
// renders it as downloadable text.
//
// MERGE RULES:
//   - lines are keyed by the exact (name, unit) pair; "Salt"/"g" and
//     "salt"/"g" are different entries
//   - amounts of equal keys are summed
//   - entries keep the order in which their key was first seen; later
//     occurrences only add to the amount
//
// Given the same input lines Merge always produces the same List, so
// recomputing a list over an unchanged cart is idempotent.
package shopping

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sakif/foodgram/internal/model"
)

// Filename is the name the text export is offered under.
const Filename = "shopping_cart.txt"

// Key identifies one merged entry.
type Key struct {
	Name string
	Unit string
}

// Item is one merged entry of the list.
type Item struct {
	Name   string `json:"name"`
	Unit   string `json:"measurement_unit"`
	Amount int    `json:"amount"`
}

// List is an insertion-ordered mapping from Key to summed amount.
// The zero value is an empty list ready to use.
type List struct {
	items []Item
	index map[Key]int
}

// Merge folds lines into a new List.
func Merge(lines []model.CartLine) *List {
	l := &List{}
	for _, line := range lines {
		l.Add(line.Name, line.Unit, line.Amount)
	}
	return l
}

// Add accumulates amount under (name, unit).
func (l *List) Add(name, unit string, amount int) {
	if l.index == nil {
		l.index = make(map[Key]int)
	}
	k := Key{Name: name, Unit: unit}
	if i, ok := l.index[k]; ok {
		l.items[i].Amount += amount
		return
	}
	l.index[k] = len(l.items)
	l.items = append(l.items, Item{Name: name, Unit: unit, Amount: amount})
}

// Len returns the number of distinct (name, unit) entries.
func (l *List) Len() int {
	return len(l.items)
}

// Amount returns the summed amount for k and whether k is present.
func (l *List) Amount(k Key) (int, bool) {
	i, ok := l.index[k]
	if !ok {
		return 0, false
	}
	return l.items[i].Amount, true
}

// Items returns a copy of the entries in first-seen order.
func (l *List) Items() []Item {
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// Text renders one "{name}, {amount} {unit}" line per entry with the unit
// lowercased. Lines are separated by "\n" with no trailing newline; an
// empty list renders as "".
func (l *List) Text() string {
	lower := cases.Lower(language.Und)
	lines := make([]string, 0, len(l.items))
	for _, it := range l.items {
		lines = append(lines, it.Name+", "+strconv.Itoa(it.Amount)+" "+lower.String(it.Unit))
	}
	return strings.Join(lines, "\n")
}

// WriteTo writes Text to w. It implements io.WriterTo.
func (l *List) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, l.Text())
	return int64(n), err
}
