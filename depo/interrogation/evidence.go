package interrogation

import (
	"fmt"
	"strings"

	radix "github.com/armon/go-radix"

	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

// EvidenceLedger accumulates every evidence item produced during a run,
// keyed by source identifier in a radix tree. Walking the tree yields
// sources in lexicographic order, which groups identifiers sharing a
// document prefix (for example "gdpr/art-6" next to "gdpr/art-28").
type EvidenceLedger struct {
	tree  *radix.Tree
	total int
}

type evidenceEntry struct {
	turn int
	item ports.Evidence
}

// NewEvidenceLedger creates an empty ledger.
func NewEvidenceLedger() *EvidenceLedger {
	return &EvidenceLedger{tree: radix.New()}
}

// Record adds a turn's evidence items under their source identifiers.
// Items without a source identifier are filed under "unattributed".
func (l *EvidenceLedger) Record(turnIndex int, items []ports.Evidence) {
	for _, item := range items {
		key := item.SourceID
		if key == "" {
			key = "unattributed"
		}
		var entries []evidenceEntry
		if existing, ok := l.tree.Get(key); ok {
			entries = existing.([]evidenceEntry)
		}
		entries = append(entries, evidenceEntry{turn: turnIndex, item: item})
		l.tree.Insert(key, entries)
		l.total++
	}
}

// Count reports the number of recorded evidence items.
func (l *EvidenceLedger) Count() int {
	return l.total
}

// Sources lists distinct source identifiers in sorted order.
func (l *EvidenceLedger) Sources() []string {
	sources := make([]string, 0, l.tree.Len())
	l.tree.Walk(func(key string, _ interface{}) bool {
		sources = append(sources, key)
		return false
	})
	return sources
}

// ForPrefix returns the evidence recorded under sources sharing a prefix,
// e.g. every article cited from one regulation.
func (l *EvidenceLedger) ForPrefix(prefix string) []ports.Evidence {
	var items []ports.Evidence
	l.tree.WalkPrefix(prefix, func(_ string, value interface{}) bool {
		for _, entry := range value.([]evidenceEntry) {
			items = append(items, entry.item)
		}
		return false
	})
	return items
}

// Appendix renders the ledger as a Markdown section for the narrative:
// one block per source, entries in turn order with locators and quoted
// excerpts. Empty ledgers render as an empty string.
func (l *EvidenceLedger) Appendix() string {
	if l.total == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("### Evidence by Source\n")
	l.tree.Walk(func(key string, value interface{}) bool {
		fmt.Fprintf(&sb, "\n**%s**\n", key)
		for _, entry := range value.([]evidenceEntry) {
			fmt.Fprintf(&sb, "- turn %d", entry.turn)
			if entry.item.Locator != "" {
				fmt.Fprintf(&sb, ", %s", entry.item.Locator)
			}
			if entry.item.Excerpt != "" {
				fmt.Fprintf(&sb, ": %q", entry.item.Excerpt)
			}
			sb.WriteString("\n")
		}
		return false
	})
	return strings.TrimRight(sb.String(), "\n")
}
