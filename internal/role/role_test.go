package role

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRoleJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func testNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	path := t.TempDir() + "/roles.json"
	writeRoleJSON(t, path, []Entry{
		{Name: "Software Engineer", Patterns: []string{`sr\.?\s*software\s*engineer`, `^software\s*engineer`}},
		{Name: "Data Analyst", Patterns: []string{`data\s*analyst`}},
	})
	n, err := Load(path)
	require.NoError(t, err)
	return n
}

func TestNormalizeMatchesNoisyTitleToCanonicalTag(t *testing.T) {
	n := testNormalizer(t)
	assert.Equal(t, "Software Engineer", n.Normalize("Sr. Software Engineer, Remote"))
	assert.Equal(t, "Data Analyst", n.Normalize("Data Analyst - Night Shift"))
}

func TestNormalizeFallsThroughToRawTitleWhenUnmatched(t *testing.T) {
	n := testNormalizer(t)
	assert.Equal(t, "Unusual Title Nobody Wrote A Pattern For", n.Normalize("Unusual Title Nobody Wrote A Pattern For"))
}

func TestLoadRejectsDuplicateNameOrEmptyPatterns(t *testing.T) {
	path := t.TempDir() + "/dup.json"
	writeRoleJSON(t, path, []Entry{
		{Name: "Software Engineer", Patterns: []string{"engineer"}},
		{Name: "Software Engineer", Patterns: []string{"dev"}},
	})
	_, err := Load(path)
	assert.Error(t, err)

	path2 := t.TempDir() + "/empty.json"
	writeRoleJSON(t, path2, []Entry{{Name: "Software Engineer"}})
	_, err = Load(path2)
	assert.Error(t, err)
}

func TestLoadRejectsUncompilablePattern(t *testing.T) {
	path := t.TempDir() + "/bad.json"
	writeRoleJSON(t, path, []Entry{{Name: "X", Patterns: []string{"("}}})
	_, err := Load(path)
	assert.Error(t, err)
}
