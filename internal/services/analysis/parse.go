package analysis

import (
	"regexp"
	"strings"
)

// UnassignedBoard collects circuits read before any board name.
const UnassignedBoard = "UNASSIGNED"

var (
	// DB1, DB-2A, MSB, SB3, SMDB1...
	boardPattern = regexp.MustCompile(`^(MSB|MDB|SMDB|SB|DB)-?(\d{1,3}[A-Z]?)?$`)
	// L1, C12, R3 or a board-qualified way such as DB1/3.
	circuitPattern = regexp.MustCompile(`^(?:[LCRYB]\d{1,3}|((?:MSB|MDB|SMDB|SB|DB)-?\d{0,3}[A-Z]?)/(\d{1,3}))$`)
	boardPrefixes  = map[string]bool{"MSB": true, "MDB": true, "SMDB": true, "SB": true, "DB": true}
	digitsOnly     = regexp.MustCompile(`^\d{1,3}[A-Z]?$`)
)

// ParseCircuitText groups board names and circuit references found in OCR
// text. Circuits attach to the most recent board; a board-qualified circuit
// (DB1/3) attaches to its own board. Boards keep first-seen order and
// circuits are de-duplicated per board.
func ParseCircuitText(text string) []Board {
	tokens := tokenize(text)

	var boards []Board
	index := make(map[string]int)
	current := ""

	boardFor := func(name string) *Board {
		i, ok := index[name]
		if !ok {
			i = len(boards)
			index[name] = i
			boards = append(boards, Board{Name: name, Circuits: []string{}})
		}
		return &boards[i]
	}
	addCircuit := func(b *Board, ref string) {
		for _, c := range b.Circuits {
			if c == ref {
				return
			}
		}
		b.Circuits = append(b.Circuits, ref)
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		// "DB 1" is read as two words.
		if boardPrefixes[tok] && i+1 < len(tokens) && digitsOnly.MatchString(tokens[i+1]) {
			tok += tokens[i+1]
			i++
		}

		if m := boardPattern.FindStringSubmatch(tok); m != nil {
			current = m[1] + m[2]
			boardFor(current)
			continue
		}

		if m := circuitPattern.FindStringSubmatch(tok); m != nil {
			if m[1] != "" {
				owner := canonicalBoard(m[1])
				addCircuit(boardFor(owner), owner+"/"+m[2])
				continue
			}
			owner := current
			if owner == "" {
				owner = UnassignedBoard
			}
			addCircuit(boardFor(owner), tok)
		}
	}

	return boards
}

func canonicalBoard(name string) string {
	return strings.ReplaceAll(name, "-", "")
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToUpper(text), func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', ',', ';', ':', '(', ')', '[', ']', '|':
			return true
		}
		return false
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".-")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
