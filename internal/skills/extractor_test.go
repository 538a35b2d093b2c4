package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVocab(t *testing.T) *Vocabulary {
	t.Helper()
	entries := []VocabEntry{
		{Name: "Go", Patterns: []string{"go", "golang"}},
		{Name: "Scala", Patterns: []string{"scala"}},
		{Name: "Python", Patterns: []string{"python"}},
	}
	require.NoError(t, Validate(entries))

	path := t.TempDir() + "/vocab.json"
	writeJSON(t, path, entries)
	v, err := LoadVocabulary(path)
	require.NoError(t, err)
	return v
}

func TestExtractLayer1CuratedPhrasesTakeLongestMatch(t *testing.T) {
	got := Extract("We need strong machine learning operations experience.", nil)
	assert.Contains(t, got, "MLOps")
	assert.NotContains(t, got, "Machine Learning", "the longer curated phrase should consume the span first")
}

func TestExtractLayer2ResolvesKnownContextCandidateViaSynonyms(t *testing.T) {
	got := Extract("The candidate has experience with kubernetes.", nil)
	assert.Contains(t, got, "Kubernetes")
}

func TestExtractLayer2DiscardsUnrecognisedCandidate(t *testing.T) {
	got := Extract("The candidate has experience with interpretive dance.", nil)
	assert.NotContains(t, got, "Interpretive Dance")
}

func TestExtractLayer3MatchesVocabularyDirectly(t *testing.T) {
	vocab := testVocab(t)
	got := Extract("Must know Python and Scala for this role.", vocab)
	assert.Contains(t, got, "Python")
	assert.Contains(t, got, "Scala")
}

func TestExtractLayer3AmbiguousSingleLetterRequiresCorroboration(t *testing.T) {
	vocab := testVocab(t)

	got := Extract("We enjoy a quick game of go on weekends.", vocab)
	assert.NotContains(t, got, "Go", "bare 'go' with no programming-language context should not corroborate")

	got = Extract("Strong Go programming language experience required.", vocab)
	assert.Contains(t, got, "Go")
}

func TestExtractLayer3SubwordHostRejectsEmbeddedMatch(t *testing.T) {
	vocab := testVocab(t)
	got := Extract("We need a highly scalable platform.", vocab)
	assert.NotContains(t, got, "Scala", "'scala' inside 'scalable' must not corroborate")
}

func TestExtractDedupesCaseInsensitiveFirstOccurrenceOrder(t *testing.T) {
	vocab := testVocab(t)
	got := Extract("python, Python, and PYTHON again.", vocab)
	count := 0
	for _, s := range got {
		if s == "Python" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExtractNoOverlapBetweenLayers(t *testing.T) {
	vocab := testVocab(t)
	// "machine learning" is claimed by layer 1 as a curated phrase; layer 3
	// must not also emit a vocabulary hit against the same span.
	got := Extract("Our team does machine learning daily.", vocab)
	assert.Contains(t, got, "Machine Learning")
}

func TestExtractVocabNilOnlyRunsLayersOneAndTwo(t *testing.T) {
	got := Extract("Deep neural networks and experience with kubernetes.", nil)
	assert.Contains(t, got, "Deep Learning")
	assert.Contains(t, got, "Kubernetes")
}
