package tcllist

import (
	"fmt"
	"strings"
)

const (
	parseErrorTemplateConstant               = "tcl list parse error at offset %d: %s"
	unbalancedBraceGroupMessageConstant      = "unbalanced brace group"
	unterminatedQuotedElementMessageConstant = "unterminated quoted element"
	charactersAfterCloseBraceMessageConstant = "extra characters after close brace"
	charactersAfterCloseQuoteMessageConstant = "extra characters after close quote"
	openBraceCharacterConstant               = '{'
	closeBraceCharacterConstant              = '}'
	doubleQuoteCharacterConstant             = '"'
	backslashCharacterConstant               = '\\'
	minimumNestingLevelsConstant             = 1
)

// ParseError reports text that does not conform to the Tcl list grammar.
type ParseError struct {
	Input    string
	Position int
	Message  string
}

// Error describes the grammar violation and where it was detected.
func (parseError ParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Position, parseError.Message)
}

// ListNode is one element of a nested Tcl list: either a leaf string or a parsed sublist.
type ListNode struct {
	LeafValue string
	Children  []ListNode
	IsList    bool
}

// NewLeafNode wraps a scalar element.
func NewLeafNode(value string) ListNode {
	return ListNode{LeafValue: value}
}

// NewSublistNode wraps an element that was itself parsed as a list.
func NewSublistNode(children []ListNode) ListNode {
	return ListNode{Children: children, IsList: true}
}

// Parse splits the top level of a Tcl list into an ordered sequence of elements.
//
// Brace groups are returned verbatim without their outer delimiters, quoted
// elements and bare tokens have backslash escapes applied, and runs of
// whitespace act as a single separator. Empty input yields an empty sequence;
// an explicit empty group {} yields a single empty element.
func Parse(text string) ([]string, error) {
	elements := []string{}
	position := 0
	for position < len(text) {
		for position < len(text) && isListWhitespace(text[position]) {
			position++
		}
		if position >= len(text) {
			break
		}
		element, nextPosition, scanError := scanElement(text, position)
		if scanError != nil {
			return nil, *scanError
		}
		elements = append(elements, element)
		position = nextPosition
	}
	return elements, nil
}

// ParseNested parses a Tcl list recursively to the requested depth.
//
// Level one splits only the top level, leaving nested list syntax inside an
// element opaque. Deeper levels re-parse each element as a list; an element
// that does not itself parse as a list becomes an opaque leaf at that
// position rather than an error.
func ParseNested(text string, levels int) ([]ListNode, error) {
	if levels < minimumNestingLevelsConstant {
		levels = minimumNestingLevelsConstant
	}

	elements, parseError := Parse(text)
	if parseError != nil {
		return nil, parseError
	}

	nodes := make([]ListNode, 0, len(elements))
	for _, element := range elements {
		if levels == minimumNestingLevelsConstant {
			nodes = append(nodes, NewLeafNode(element))
			continue
		}
		children, childError := ParseNested(element, levels-1)
		if childError != nil {
			nodes = append(nodes, NewLeafNode(element))
			continue
		}
		nodes = append(nodes, NewSublistNode(children))
	}
	return nodes, nil
}

func scanElement(text string, position int) (string, int, *ParseError) {
	switch text[position] {
	case openBraceCharacterConstant:
		return scanBraceGroup(text, position)
	case doubleQuoteCharacterConstant:
		return scanQuotedElement(text, position)
	default:
		return scanBareToken(text, position)
	}
}

// scanBraceGroup keeps the group content untouched: no escape interpretation
// happens inside braces, though a backslash still shields the following
// character from the balance count, matching the Tcl lexer.
func scanBraceGroup(text string, position int) (string, int, *ParseError) {
	var content strings.Builder
	depth := 1
	index := position + 1
	for index < len(text) {
		character := text[index]
		if character == backslashCharacterConstant && index+1 < len(text) {
			content.WriteByte(character)
			content.WriteByte(text[index+1])
			index += 2
			continue
		}
		if character == openBraceCharacterConstant {
			depth++
		}
		if character == closeBraceCharacterConstant {
			depth--
			if depth == 0 {
				index++
				if index < len(text) && !isListWhitespace(text[index]) {
					return "", 0, &ParseError{Input: text, Position: index, Message: charactersAfterCloseBraceMessageConstant}
				}
				return content.String(), index, nil
			}
		}
		content.WriteByte(character)
		index++
	}
	return "", 0, &ParseError{Input: text, Position: position, Message: unbalancedBraceGroupMessageConstant}
}

func scanQuotedElement(text string, position int) (string, int, *ParseError) {
	var content strings.Builder
	index := position + 1
	for index < len(text) {
		character := text[index]
		if character == backslashCharacterConstant && index+1 < len(text) {
			content.WriteByte(unescapeCharacter(text[index+1]))
			index += 2
			continue
		}
		if character == doubleQuoteCharacterConstant {
			index++
			if index < len(text) && !isListWhitespace(text[index]) {
				return "", 0, &ParseError{Input: text, Position: index, Message: charactersAfterCloseQuoteMessageConstant}
			}
			return content.String(), index, nil
		}
		content.WriteByte(character)
		index++
	}
	return "", 0, &ParseError{Input: text, Position: position, Message: unterminatedQuotedElementMessageConstant}
}

func scanBareToken(text string, position int) (string, int, *ParseError) {
	var content strings.Builder
	index := position
	for index < len(text) && !isListWhitespace(text[index]) {
		character := text[index]
		if character == backslashCharacterConstant && index+1 < len(text) {
			content.WriteByte(unescapeCharacter(text[index+1]))
			index += 2
			continue
		}
		content.WriteByte(character)
		index++
	}
	return content.String(), index, nil
}

func unescapeCharacter(character byte) byte {
	switch character {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'v':
		return '\v'
	case 'f':
		return '\f'
	default:
		return character
	}
}

func isListWhitespace(character byte) bool {
	switch character {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
