// Package sourcemap decodes the compressed source maps emitted by solc.
//
// A source map is a `;`-separated list of `s:l:f:j:m` items (byte offset,
// length, source file index, jump type, modifier depth). Empty or missing
// fields inherit the value of the previous item.
package sourcemap

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	fieldOffset = iota
	fieldLength
	fieldFile
	fieldJump
	fieldModifierDepth
)

// Jump types.
const (
	JumpIn      = 'i'
	JumpOut     = 'o'
	JumpRegular = '-'
)

// Item is a fully resolved source map entry.
type Item struct {
	S int
	L int
	F int
	J rune
	M int
}

// PartialItem is an entry as written, where nil fields are inherited.
type PartialItem struct {
	S *int
	L *int
	F *int
	J *rune
	M *int
}

// Start is the implicit item preceding the first entry.
var Start = Item{S: 0, L: 0, F: 0, J: JumpRegular, M: 0}

// ParseItem parses one `s:l:f:j:m` entry. Fields that are missing or do not
// parse are left nil.
func ParseItem(raw string) PartialItem {
	fields := strings.Split(raw, ":")

	var item PartialItem

	item.S = intField(fields, fieldOffset)
	item.L = intField(fields, fieldLength)
	item.F = intField(fields, fieldFile)
	item.M = intField(fields, fieldModifierDepth)

	if fieldJump < len(fields) {
		if r, size := utf8.DecodeRuneInString(fields[fieldJump]); size > 0 && size == len(fields[fieldJump]) {
			item.J = &r
		}
	}

	return item
}

func intField(fields []string, index int) *int {
	if index >= len(fields) {
		return nil
	}

	n, err := strconv.Atoi(fields[index])
	if err != nil {
		return nil
	}

	return &n
}

// Resolve fills the nil fields of cur from prev.
func Resolve(prev Item, cur PartialItem) Item {
	item := prev

	if cur.S != nil {
		item.S = *cur.S
	}

	if cur.L != nil {
		item.L = *cur.L
	}

	if cur.F != nil {
		item.F = *cur.F
	}

	if cur.J != nil {
		item.J = *cur.J
	}

	if cur.M != nil {
		item.M = *cur.M
	}

	return item
}

// Decode resolves every entry of a compressed source map.
func Decode(raw string) []Item {
	if raw == "" {
		return nil
	}

	entries := strings.Split(raw, ";")
	items := make([]Item, 0, len(entries))
	prev := Start

	for _, entry := range entries {
		prev = Resolve(prev, ParseItem(entry))
		items = append(items, prev)
	}

	return items
}

// Position converts the item's byte offset into a 1-based line and 0-based
// column within src. ok is false for negative offsets (solc uses -1 for
// generated code) and offsets beyond src.
func (it Item) Position(src []byte) (line, column int, ok bool) {
	if it.S < 0 || it.S > len(src) {
		return 0, 0, false
	}

	line = 1

	for _, r := range string(src[:it.S]) {
		if r == '\n' {
			line++
			column = 0

			continue
		}

		column++
	}

	return line, column, true
}
