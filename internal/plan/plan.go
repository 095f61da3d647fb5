// Package plan turns a will context and its selected clauses into a layout
// independent document plan. The plan is an ordered list of clauses, each a
// list of typed content blocks. Rendering is pure: no I/O, no clock, no
// randomness, so the same context always yields the same plan.
package plan

import "willforge/internal/clause"

// BlockType discriminates content block shapes.
type BlockType string

const (
	BlockHeading      BlockType = "heading1"
	BlockParagraph    BlockType = "paragraph"
	BlockBulletItem   BlockType = "bullet_item"
	BlockNumberedItem BlockType = "numbered_item"
	BlockDefinition   BlockType = "definition_item"
	BlockSignature    BlockType = "signature_block"
)

// SignatureBlock describes one signing area: a ruled space with labelled
// lines beneath it.
type SignatureBlock struct {
	Label           string
	Name            string
	NameLabel       string
	AddressLabel    string
	OccupationLabel string
	DateLabel       string
	Lines           int
}

// ContentBlock is one unit of clause content. Text carries prose for
// paragraph and list blocks; Term/Definition carry definition entries;
// Signature carries signing areas. Exactly one of those groups is populated,
// according to Type.
type ContentBlock struct {
	Type        BlockType
	Text        string
	Term        string
	Definition  string
	Signature   *SignatureBlock
	Style       string
	IndentLevel int
}

// Item is one clause in the document plan.
type Item struct {
	ID             clause.ID
	Title          string
	ClauseNumber   int
	NumberingLevel int
	Blocks         []ContentBlock
}

func paragraph(text string) ContentBlock {
	return ContentBlock{Type: BlockParagraph, Text: text, Style: "normal"}
}

func heading(text string) ContentBlock {
	return ContentBlock{Type: BlockHeading, Text: text, Style: "title"}
}

func bullet(text, style string) ContentBlock {
	return ContentBlock{Type: BlockBulletItem, Text: text, Style: style, IndentLevel: 1}
}

func numbered(text, style string) ContentBlock {
	return ContentBlock{Type: BlockNumberedItem, Text: text, Style: style, IndentLevel: 1}
}

func definition(term, def string) ContentBlock {
	return ContentBlock{Type: BlockDefinition, Term: term, Definition: def, Style: "definition", IndentLevel: 1}
}

// ToMaps converts a plan to plain maps for JSON serialization in inspection
// endpoints and audit payloads.
func ToMaps(items []Item) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, item := range items {
		blocks := make([]map[string]any, len(item.Blocks))
		for j, b := range item.Blocks {
			m := map[string]any{
				"type":         string(b.Type),
				"style":        b.Style,
				"indent_level": b.IndentLevel,
			}
			switch b.Type {
			case BlockDefinition:
				m["term"] = b.Term
				m["definition"] = b.Definition
			case BlockSignature:
				if b.Signature != nil {
					m["signature"] = map[string]any{
						"label":            b.Signature.Label,
						"name":             b.Signature.Name,
						"name_label":       b.Signature.NameLabel,
						"address_label":    b.Signature.AddressLabel,
						"occupation_label": b.Signature.OccupationLabel,
						"date_label":       b.Signature.DateLabel,
						"lines":            b.Signature.Lines,
					}
				}
			default:
				m["content"] = b.Text
			}
			blocks[j] = m
		}
		out[i] = map[string]any{
			"id":              string(item.ID),
			"title":           item.Title,
			"clause_number":   item.ClauseNumber,
			"numbering_level": item.NumberingLevel,
			"content_blocks":  blocks,
		}
	}
	return out
}
