package skills

import "strings"

// synonymTable maps inflections and abbreviations to the single canonical
// display name the vocabulary's normalisation rules assign (§4.8
// Normalisation). Keys are lowercase for case-insensitive lookup.
var synonymTable = map[string]string{
	"ml":                    "Machine Learning",
	"ml engineering":        "Machine Learning",
	"machine learning":      "Machine Learning",
	"nlp":                   "Natural Language Processing",
	"text processing":       "Natural Language Processing",
	"natural language processing": "Natural Language Processing",
	"ci-cd":                 "CI/CD",
	"cicd":                  "CI/CD",
	"ci/cd":                 "CI/CD",
	"continuous integration": "CI/CD",
	"deep neural networks":  "Deep Learning",
	"dl":                    "Deep Learning",
	"deep learning":         "Deep Learning",
	"mlops":                 "MLOps",
	"model lifecycle management": "MLOps",
	"k8s":                   "Kubernetes",
	"kubernetes":            "Kubernetes",
	"golang":                "Go",
	"py":                    "Python",
	"python":                "Python",
	"js":                    "JavaScript",
	"javascript":            "JavaScript",
	"ts":                    "TypeScript",
	"typescript":            "TypeScript",
}

// canonicalize resolves a raw candidate string to its canonical name via
// the synonym table. The second return value is false when the candidate
// is not recognised vocabulary — Layer 2 must discard such candidates
// rather than inventing new canonical names (§4.8 Layer 2).
func canonicalize(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	name, ok := synonymTable[key]
	return name, ok
}
