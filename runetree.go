package project747

import "strings"

// RuneNode is a trie over the runes of a set of literal strings, used to
// strip markup tags from script text in one pass.
type RuneNode struct {
	rune      rune               // The rune this node represents.
	runes     []rune             // The prior runes that led to this node.
	terminal  bool               // If a literal ends at this node.
	childs    map[rune]*RuneNode // The child nodes.
	childsArr *[]*RuneNode       // The child nodes in an array, for precedence
}

func (root *RuneNode) evaluate(node *RuneNode, r rune) (*RuneNode, bool) {
	// Small fan-outs are scanned linearly, larger ones go through the map.
	if node.childsArr != nil {
		children := *node.childsArr
		for _, child := range children {
			if child.rune == r {
				return child, child.terminal
			}
		}
	} else {
		child, ok := node.childs[r]
		if ok {
			return child, child.terminal
		}
	}
	return nil, false
}

// Represent the tree as a string by traversing the tree, and using tree
// characters to represent the tree structure.
func (node *RuneNode) string(level int) string {
	if node == nil {
		return ""
	}
	s := string(node.rune)
	idx := 0
	if len(node.childs) == 1 {
		for r := range node.childs {
			s += node.childs[r].string(level)
		}
		return s
	}
	level += 1
	s += "\n"

	for r := range node.childs {
		childPrefix := strings.Repeat("| ", level-1)
		if idx == len(node.childs)-1 {
			childPrefix += "└─"
		} else {
			childPrefix += "├─"
		}
		s += childPrefix + node.childs[r].string(level)
		idx += 1
	}
	return s
}

// Wrapper
func (node *RuneNode) String() string {
	return node.string(0)
}

// NewRuneTree builds the trie for literals. Empty literals are ignored.
func NewRuneTree(literals []string) *RuneNode {
	runeTree := &RuneNode{
		runes:  []rune{},
		childs: make(map[rune]*RuneNode, 0),
	}

	for _, literal := range literals {
		keyRunes := []rune(literal)
		keyLen := len(keyRunes)
		node := runeTree
		for i := 0; i < keyLen; i++ {
			r := keyRunes[i]
			childNode, ok := node.childs[r]
			if !ok {
				children := make([]*RuneNode, 0)
				node.childs[r] = &RuneNode{
					rune:      r,
					runes:     keyRunes[:i+1],
					terminal:  i == keyLen-1,
					childs:    make(map[rune]*RuneNode, 0),
					childsArr: &children,
				}
			} else if i == keyLen-1 {
				childNode.terminal = true
			}
			if len(node.childs) > 10 {
				node.childsArr = nil
			} else {
				if node.childsArr == nil {
					children := make([]*RuneNode, 0)
					node.childsArr = &children
				}
				if len(node.childs) != len(*node.childsArr) {
					*node.childsArr = append(*node.childsArr, node.childs[r])
				}
			}
			node = node.childs[r]
		}
	}
	return runeTree
}

// longestMatch returns the rune length of the longest literal starting at
// runes[at], 0 when none does.
func (root *RuneNode) longestMatch(runes []rune, at int) int {
	longest := 0
	node := root
	for idx := at; idx < len(runes); idx++ {
		var terminal bool
		node, terminal = root.evaluate(node, runes[idx])
		if node == nil {
			break
		}
		if terminal {
			longest = idx - at + 1
		}
	}
	return longest
}

// Strip
// Removes every occurrence of the tree's literals from text, preferring the
// longest literal at each position.
func (root *RuneNode) Strip(text string) string {
	runes := []rune(text)
	var stripped strings.Builder
	stripped.Grow(len(text))
	for idx := 0; idx < len(runes); {
		if matched := root.longestMatch(runes, idx); matched > 0 {
			idx += matched
			continue
		}
		stripped.WriteRune(runes[idx])
		idx++
	}
	return stripped.String()
}
