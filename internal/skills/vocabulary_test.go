package skills

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestLoadVocabularyCompilesValidEntries(t *testing.T) {
	path := t.TempDir() + "/vocab.json"
	writeJSON(t, path, []VocabEntry{
		{Name: "Go", Patterns: []string{"go", "golang"}},
		{Name: "Python", Patterns: []string{"python"}},
	})

	v, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Len(t, v.entries, 2)
}

func TestLoadVocabularyRejectsDuplicateName(t *testing.T) {
	path := t.TempDir() + "/vocab.json"
	writeJSON(t, path, []VocabEntry{
		{Name: "Go", Patterns: []string{"go"}},
		{Name: "Go", Patterns: []string{"golang"}},
	})

	_, err := LoadVocabulary(path)
	assert.Error(t, err)
}

func TestLoadVocabularyRejectsEmptyPatterns(t *testing.T) {
	path := t.TempDir() + "/vocab.json"
	writeJSON(t, path, []VocabEntry{{Name: "Go", Patterns: nil}})

	_, err := LoadVocabulary(path)
	assert.Error(t, err)
}

func TestLoadVocabularyRejectsUncompilablePattern(t *testing.T) {
	path := t.TempDir() + "/vocab.json"
	writeJSON(t, path, []VocabEntry{{Name: "Go", Patterns: []string{"("}}})

	_, err := LoadVocabulary(path)
	assert.Error(t, err)
}

func TestLoadVocabularyRejectsMissingFile(t *testing.T) {
	_, err := LoadVocabulary("/nonexistent/path/vocab.json")
	assert.Error(t, err)
}

func TestValidateCatchesSameContractIssuesInMemory(t *testing.T) {
	assert.NoError(t, Validate([]VocabEntry{{Name: "Go", Patterns: []string{"go"}}}))
	assert.Error(t, Validate([]VocabEntry{{Name: "", Patterns: []string{"go"}}}))
	assert.Error(t, Validate([]VocabEntry{{Name: "Go"}}))
}
