package suggest

import (
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// searchTrie collects the entries under lowerPrefix that reach minThreshold.
// An empty prefix walks the whole trie.
func searchTrie(trie *patricia.Trie, lowerPrefix string, minThreshold int) []entry {
	if trie == nil {
		return nil
	}

	var found []entry
	visit := func(p patricia.Prefix, item patricia.Item) error {
		e, ok := item.(entry)
		if !ok {
			log.Errorf("Unknown item type: %T for word %s", item, p)
			return nil
		}
		if e.frequency < minThreshold {
			return nil
		}
		found = append(found, e)
		return nil
	}

	var err error
	if lowerPrefix == "" {
		err = trie.Visit(visit)
	} else {
		err = trie.VisitSubtree(patricia.Prefix(lowerPrefix), visit)
	}
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
	}
	return found
}

// ApplyCapitalization uppercases the letters of word at the positions the
// user typed in uppercase. Other letters keep their stored case.
func ApplyCapitalization(word string, capitalPositions []bool) string {
	if len(capitalPositions) == 0 {
		return word
	}

	wordRunes := []rune(word)
	for i := 0; i < len(wordRunes) && i < len(capitalPositions); i++ {
		if capitalPositions[i] && wordRunes[i] >= 'a' && wordRunes[i] <= 'z' {
			wordRunes[i] = wordRunes[i] - 'a' + 'A'
		}
	}
	return string(wordRunes)
}
