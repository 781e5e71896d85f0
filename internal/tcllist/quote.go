package tcllist

import (
	"strings"
)

const (
	specialTokenCharactersConstant = "{}\"\\$[]; \t\n\r\v\f"
	elementSeparatorConstant       = " "
	emptyGroupTokenConstant        = "{}"
)

// Quote renders a single value as a token the Tcl lexer reads back as
// exactly that value, whether embedded in a command line or a list.
//
// The value is left bare when it is non-empty and free of special
// characters, brace-wrapped when its braces balance, and backslash-escaped
// otherwise. A value containing a backslash is never brace-wrapped: brace
// groups perform no escape processing, so a trailing or brace-adjacent
// backslash could not round-trip through one.
func Quote(value string) string {
	if len(value) == 0 {
		return emptyGroupTokenConstant
	}
	if !strings.ContainsAny(value, specialTokenCharactersConstant) {
		return value
	}
	if bracesBalanced(value) && !strings.ContainsRune(value, backslashCharacterConstant) {
		return string(openBraceCharacterConstant) + value + string(closeBraceCharacterConstant)
	}
	return escapeValue(value)
}

// Serialize renders a sequence of strings as a Tcl list, quoting each
// element minimally and joining the tokens with single spaces.
// Parse(Serialize(elements)) returns elements unchanged for any sequence
// of strings free of raw newlines.
func Serialize(elements []string) string {
	tokens := make([]string, 0, len(elements))
	for _, element := range elements {
		tokens = append(tokens, Quote(element))
	}
	return strings.Join(tokens, elementSeparatorConstant)
}

// SerializeNodes renders a nested list structure back into Tcl list syntax.
func SerializeNodes(nodes []ListNode) string {
	tokens := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if node.IsList {
			tokens = append(tokens, Quote(SerializeNodes(node.Children)))
			continue
		}
		tokens = append(tokens, Quote(node.LeafValue))
	}
	return strings.Join(tokens, elementSeparatorConstant)
}

func bracesBalanced(value string) bool {
	depth := 0
	for index := 0; index < len(value); index++ {
		switch value[index] {
		case openBraceCharacterConstant:
			depth++
		case closeBraceCharacterConstant:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

func escapeValue(value string) string {
	var escaped strings.Builder
	for index := 0; index < len(value); index++ {
		character := value[index]
		switch character {
		case '\n':
			escaped.WriteString(`\n`)
		case '\t':
			escaped.WriteString(`\t`)
		case '\r':
			escaped.WriteString(`\r`)
		case '\v':
			escaped.WriteString(`\v`)
		case '\f':
			escaped.WriteString(`\f`)
		default:
			if strings.IndexByte(specialTokenCharactersConstant, character) >= 0 {
				escaped.WriteByte(backslashCharacterConstant)
			}
			escaped.WriteByte(character)
		}
	}
	return escaped.String()
}
