package interrogation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

func TestEvidenceLedgerRecordAndSources(t *testing.T) {
	ledger := NewEvidenceLedger()
	assert.Equal(t, 0, ledger.Count())

	ledger.Record(1, []ports.Evidence{
		{SourceID: "gdpr/art-6", Excerpt: "processing shall be lawful"},
		{SourceID: "gdpr/art-28", Excerpt: "governed by a contract"},
	})
	ledger.Record(2, []ports.Evidence{
		{SourceID: "gdpr/art-6", Excerpt: "legitimate interests"},
		{SourceID: "dpa/clause-4", Excerpt: "sub-processor approval"},
	})

	assert.Equal(t, 4, ledger.Count())
	// Sources come back sorted, grouping shared prefixes.
	assert.Equal(t, []string{"dpa/clause-4", "gdpr/art-28", "gdpr/art-6"}, ledger.Sources())
}

func TestEvidenceLedgerForPrefix(t *testing.T) {
	ledger := NewEvidenceLedger()
	ledger.Record(1, []ports.Evidence{
		{SourceID: "gdpr/art-6", Excerpt: "lawful bases"},
		{SourceID: "gdpr/art-28", Excerpt: "processor contract"},
		{SourceID: "dpa/clause-4", Excerpt: "approval"},
	})

	gdpr := ledger.ForPrefix("gdpr/")
	require.Len(t, gdpr, 2)

	all := ledger.ForPrefix("")
	assert.Len(t, all, 3)

	none := ledger.ForPrefix("ccpa/")
	assert.Empty(t, none)
}

func TestEvidenceLedgerUnattributedFallback(t *testing.T) {
	ledger := NewEvidenceLedger()
	ledger.Record(1, []ports.Evidence{{Excerpt: "quoted without a source"}})

	assert.Equal(t, []string{"unattributed"}, ledger.Sources())
	assert.Len(t, ledger.ForPrefix("unattributed"), 1)
}

func TestEvidenceLedgerAppendix(t *testing.T) {
	ledger := NewEvidenceLedger()
	ledger.Record(1, []ports.Evidence{
		{SourceID: "gdpr/art-33", Excerpt: "without undue delay", Locator: "Article 33(1)"},
	})
	ledger.Record(3, []ports.Evidence{
		{SourceID: "gdpr/art-33", Excerpt: "not later than 72 hours"},
	})

	appendix := ledger.Appendix()
	assert.Contains(t, appendix, "### Evidence by Source")
	assert.Contains(t, appendix, "**gdpr/art-33**")
	assert.Contains(t, appendix, "- turn 1, Article 33(1): \"without undue delay\"")
	assert.Contains(t, appendix, "- turn 3: \"not later than 72 hours\"")
}

func TestEvidenceLedgerEmptyAppendix(t *testing.T) {
	ledger := NewEvidenceLedger()
	assert.Empty(t, ledger.Appendix())

	// Recording an empty slice leaves the ledger empty.
	ledger.Record(1, nil)
	assert.Empty(t, ledger.Appendix())
	assert.Equal(t, 0, ledger.Count())
}
