package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMatchesKeywordSubstring(t *testing.T) {
	table := DefaultTable()

	ids, matches := table.Extract("My neighbour committed theft and then assault")

	assert.Equal(t, []string{"THEFT_01", "ASSAULT_01"}, ids)
	require.Len(t, matches, 2)
	assert.Equal(t, "theft", matches[0].Keyword)
	assert.Equal(t, "THEFT_01", matches[0].CaseTypeID)
	assert.Equal(t, "Symbolic rule: 'theft' -> THEFT_01", matches[0].Rule)
}

func TestExtractIsCaseInsensitive(t *testing.T) {
	table := DefaultTable()

	ids, _ := table.Extract("THEFT at the market")

	assert.Equal(t, []string{"THEFT_01"}, ids)
}

func TestExtractFirstKeywordInTableOrderWins(t *testing.T) {
	table := NewTable([]Rule{
		{Keyword: "alpha", CaseTypeIDs: []string{"X_01"}},
		{Keyword: "bravo", CaseTypeIDs: []string{"X_01"}},
		{Keyword: "charlie", CaseTypeIDs: []string{"Y_01"}},
	})

	ids, matches := table.Extract("bravo and alpha happened")

	assert.Equal(t, []string{"X_01"}, ids)
	require.Len(t, matches, 1)
	assert.Equal(t, "alpha", matches[0].Keyword, "trigger must follow table order, not text order")
}

func TestExtractKeywordMappingToMultipleCaseTypes(t *testing.T) {
	table := DefaultTable()

	ids, matches := table.Extract("a clear case of fraud")

	assert.Equal(t, []string{"CHEATING_01", "CHEATING_02"}, ids)
	require.Len(t, matches, 2)
	assert.Equal(t, "fraud", matches[0].Keyword)
	assert.Equal(t, "fraud", matches[1].Keyword)
}

func TestExtractStolenWalletScenario(t *testing.T) {
	// "stole" is not matched by the "stolen" keyword: containment goes the
	// other way, the keyword must appear inside the text. Only "beat" fires.
	table := DefaultTable()

	ids, matches := table.Extract("He stole my wallet and threatened to beat me")

	assert.Equal(t, []string{"ASSAULT_01"}, ids)
	require.Len(t, matches, 1)
	assert.Equal(t, "beat", matches[0].Keyword)
}

func TestExtractEmptyText(t *testing.T) {
	table := DefaultTable()

	ids, matches := table.Extract("")

	assert.Empty(t, ids)
	assert.Empty(t, matches)
}

func TestExtractHarassmentSharesAssaultCaseType(t *testing.T) {
	table := DefaultTable()

	ids, _ := table.Extract("constant harassment and assault at work")

	// "assault" precedes "harassment" in table order, so ASSAULT_01 is
	// triggered by "assault" and harassment contributes only HARASSMENT_01.
	assert.Equal(t, []string{"ASSAULT_01", "HARASSMENT_01"}, ids)
}

func TestExtractDoesNotMutateTable(t *testing.T) {
	table := DefaultTable()
	before := table.Len()

	table.Extract("theft assault murder")
	table.Extract("")

	assert.Equal(t, before, table.Len())
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := []byte(`rules:
  - keyword: Theft
    case_types: [THEFT_01]
  - keyword: burglary
    case_types: [THEFT_01, TRESPASS_01]
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	ids, matches := table.Extract("a theft and burglary last night")
	assert.Equal(t, []string{"THEFT_01", "TRESPASS_01"}, ids)
	require.Len(t, matches, 2)
	assert.Equal(t, "theft", matches[0].Keyword, "keywords are lowercased on load")
}

func TestLoadTableRejectsEmptyRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: []\n"), 0644))

	_, err := LoadTable(path)
	assert.Error(t, err)
}

func TestLoadTableRejectsRuleWithoutCaseTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := []byte(`rules:
  - keyword: theft
    case_types: []
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	_, err := LoadTable(path)
	assert.Error(t, err)
}

func TestLoadTableMissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
