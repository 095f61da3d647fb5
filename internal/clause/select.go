package clause

import "willforge/internal/will"

// Select returns the ordered clause list for a context. It walks the fixed
// order once and keeps each clause whose required flags are all set. The
// result is dense, duplicate free, and in document order by construction.
func Select(ctx *will.Context) []ID {
	flags := ctx.Flags.Map()
	selected := make([]ID, 0, len(Order))
	for _, id := range Order {
		if depends(id, flags) {
			selected = append(selected, id)
		}
	}
	return selected
}

// Number returns the 1-based position of a clause within the selection, or 0
// when the clause was not selected.
func Number(id ID, selected []ID) int {
	for i, c := range selected {
		if c == id {
			return i + 1
		}
	}
	return 0
}

// ValidateOrder reports whether the clauses appear in strictly increasing
// catalogue order with no unknown IDs.
func ValidateOrder(clauses []ID) bool {
	position := make(map[ID]int, len(Order))
	for i, id := range Order {
		position[id] = i
	}

	last := -1
	for _, c := range clauses {
		idx, ok := position[c]
		if !ok || idx <= last {
			return false
		}
		last = idx
	}
	return true
}

// FindConflicts checks structural invariants of a selection: no duplicates,
// title first, attestation last. It returns human-readable conflict messages;
// an empty slice means the selection is sound.
func FindConflicts(selected []ID) []string {
	var conflicts []string

	seen := make(map[ID]struct{}, len(selected))
	for _, c := range selected {
		if _, dup := seen[c]; dup {
			conflicts = append(conflicts, "duplicate clause: "+string(c))
		}
		seen[c] = struct{}{}
	}

	if len(selected) > 0 {
		if selected[0] != TitleIdentification {
			conflicts = append(conflicts, "title clause must be first")
		}
		if selected[len(selected)-1] != Attestation {
			conflicts = append(conflicts, "attestation clause must be last")
		}
	}

	return conflicts
}

// Summary is the explainability projection of one selection run.
type Summary struct {
	TotalClauses    int             `json:"total_clauses"`
	SelectedClauses []ID            `json:"selected_clauses"`
	Flags           map[string]bool `json:"flags"`
	Conflicts       []string        `json:"conflicts"`
	ClausesDetail   []SummaryEntry  `json:"clauses_detail"`
}

// SummaryEntry describes one selected clause for display.
type SummaryEntry struct {
	ID          ID     `json:"id"`
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Summarize runs selection and packages the result with the flags that drove
// it, for inspection endpoints and audit payloads.
func Summarize(ctx *will.Context) Summary {
	selected := Select(ctx)

	detail := make([]SummaryEntry, len(selected))
	for i, c := range selected {
		detail[i] = SummaryEntry{
			ID:          c,
			Number:      i + 1,
			Title:       Title(c),
			Description: Description(c),
		}
	}

	return Summary{
		TotalClauses:    len(selected),
		SelectedClauses: selected,
		Flags:           ctx.Flags.Map(),
		Conflicts:       FindConflicts(selected),
		ClausesDetail:   detail,
	}
}
