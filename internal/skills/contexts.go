package skills

import "regexp"

// contextTemplate is one of Layer 2's trigger-phrase templates that
// captures a trailing noun phrase as the candidate skill (§4.8 Layer 2).
type contextTemplate struct {
	re *regexp.Regexp
}

// captureTail matches a short trailing noun phrase: letters, digits, and
// the handful of punctuation marks that appear inside real skill names
// (C++, CI/CD, Node.js), stopping at a sentence boundary.
const captureTail = `([A-Za-z0-9+/#.\- ]{2,40}?)(?:[.,;\n]|$)`

var contextTemplates = []contextTemplate{
	{regexp.MustCompile(`(?i)(?:experience|proficiency|expertise)\s+(?:with|in|of)\s+` + captureTail)},
	{regexp.MustCompile(`(?i)(?:skilled|proficient|expert)\s+(?:in|with|at)\s+` + captureTail)},
	{regexp.MustCompile(`(?i)(?:using|leveraging|implementing|building)\s+` + captureTail)},
	{regexp.MustCompile(`(?i)(?:knowledge|understanding)\s+of\s+` + captureTail)},
	{regexp.MustCompile(`(?i)(?:hands-on|practical)\s+experience\s+with\s+` + captureTail)},
	{regexp.MustCompile(`(?i)(?:requires?|must\s+have)\s+(?:experience\s+with\s+)?` + captureTail)},
}
