/*
Package extract locates semantic fields in the flattened text of a kabutan snapshot page.

Pages carry no usable structure once flattened, so every field is found relative to a
literal landmark token (an anchor). Token positions are only reachable through anchors.
*/
package extract

import (
	"fmt"
	"strings"
)

// Absent marks a value the page did not provide. Tokens are never empty, so it cannot
// be confused with page data.
const Absent = ""

// Tokens is one page's whitespace-delimited text. It is immutable once built.
type Tokens struct {
	words []string
}

// Tokenize collapses every whitespace run (including newlines, NBSP and the ideographic
// space) and splits the text into tokens. Empty input yields an empty sequence.
func Tokenize(text string) Tokens {
	return Tokens{words: strings.Fields(text)}
}

// NewTokens wraps an already split sequence.
func NewTokens(words ...string) Tokens {
	cp := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			cp = append(cp, w)
		}
	}
	return Tokens{words: cp}
}

func (t Tokens) Len() int {
	return len(t.words)
}

// Locate returns the offset of the first exact occurrence of anchor.
func (t Tokens) Locate(anchor string) (int, error) {
	for i, w := range t.words {
		if w == anchor {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrAnchorNotFound, anchor)
}

func (t Tokens) Has(anchor string) bool {
	_, err := t.Locate(anchor)
	return err == nil
}

// Slice copies the tokens in [start, end). Out of range bounds are clamped.
func (t Tokens) Slice(start, end int) []string {
	if start < 0 {
		start = 0
	}
	if end > len(t.words) {
		end = len(t.words)
	}
	if start >= end {
		return nil
	}
	out := make([]string, end-start)
	copy(out, t.words[start:end])
	return out
}

// Between returns the tokens strictly between the first occurrences of two anchors.
// Both anchors must be present and start must come before end.
func (t Tokens) Between(startAnchor, endAnchor string) ([]string, error) {
	start, err := t.Locate(startAnchor)
	if err != nil {
		return nil, err
	}
	end, err := t.Locate(endAnchor)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, fmt.Errorf("%w: %q at %d is not before %q at %d", ErrAnchorOrder, startAnchor, start, endAnchor, end)
	}
	return t.Slice(start+1, end), nil
}

// Window returns count tokens starting offset positions after anchor.
func (t Tokens) Window(anchor string, offset, count int) ([]string, error) {
	at, err := t.Locate(anchor)
	if err != nil {
		return nil, err
	}
	from := at + offset
	if from < 0 || from+count > len(t.words) {
		return nil, fmt.Errorf("%w: %q needs %d tokens from offset %d, page has %d", ErrWindowOutOfRange, anchor, count, offset, len(t.words)-at)
	}
	return t.Slice(from, from+count), nil
}
