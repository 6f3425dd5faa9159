package ai

import (
	"regexp"
	"strconv"
	"strings"
)

// LineGrammarVersion identifies the reply format the prompt asks for and
// ParseMentions accepts. Bump it together with the prompt wording.
const LineGrammarVersion = "v1"

// mentionLine is grammar v1: a leading hyphen (whitespace around it allowed),
// the item name matched lazily, then "(" and a run of digits.
//
//	-Hollow Knight (12)
//	  - Celeste (3)
var mentionLine = regexp.MustCompile(`^\s*-\s*(.+?)\s*\((\d+)`)

// ParseMentions turns a model reply into item -> count. Lines that do not
// follow the grammar are dropped. A name that appears twice keeps the count
// of its last line.
func ParseMentions(response string) map[string]int {
	mentions := make(map[string]int)

	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		m := mentionLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}

		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		count, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}

		mentions[name] = count
	}

	return mentions
}
