// Package vocab loads the shared vocabulary set used by every request.
package vocab

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"lingo-engine/internal/shared"
)

// Vocab is one loaded vocabulary file. Entries are kept in file order; the
// id of a token is its position in the file.
type Vocab struct {
	Name string
	ids  map[string]int
	toks []string
}

// Set is the ordered vocabulary list for a model. Index 0 is the source
// vocabulary and the last entry is the target vocabulary. Files that appear
// more than once in the configured list are loaded once and shared by
// reference across the set.
type Set struct {
	vocabs []*Vocab
}

// LoadSet loads every named vocabulary file, deduplicating identical paths.
// Fewer than two files is a configuration error: translation always needs a
// source and a target vocabulary.
func LoadSet(paths []string) (*Set, error) {
	if len(paths) < 2 {
		return nil, shared.ErrInsufficientVocabs
	}
	loaded := make(map[string]*Vocab)
	vocabs := make([]*Vocab, len(paths))
	for i, path := range paths {
		if v, ok := loaded[path]; ok {
			vocabs[i] = v
			continue
		}
		v, err := load(path)
		if err != nil {
			return nil, err
		}
		loaded[path] = v
		vocabs[i] = v
	}
	return &Set{vocabs: vocabs}, nil
}

func load(path string) (*Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	v := &Vocab{
		Name: filepath.Base(path),
		ids:  make(map[string]int),
	}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		tok := strings.TrimSpace(scanner.Text())
		if tok == "" {
			continue
		}
		if _, ok := v.ids[tok]; ok {
			continue
		}
		v.ids[tok] = len(v.toks)
		v.toks = append(v.toks, tok)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Set) Len() int { return len(s.vocabs) }

func (s *Set) At(i int) *Vocab { return s.vocabs[i] }

func (s *Set) Source() *Vocab { return s.vocabs[0] }

func (s *Set) Target() *Vocab { return s.vocabs[len(s.vocabs)-1] }

// ID returns the token id, or -1 when the token is out of vocabulary.
func (v *Vocab) ID(tok string) int {
	if id, ok := v.ids[tok]; ok {
		return id
	}
	return -1
}

func (v *Vocab) Token(id int) (string, bool) {
	if id < 0 || id >= len(v.toks) {
		return "", false
	}
	return v.toks[id], true
}

func (v *Vocab) Size() int { return len(v.toks) }
