package glossary

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// lexiconFile is a parsed lexicon source: a sequence of term and plain
// statements.
type lexiconFile struct {
	Statements []*statement `parser:"@@*"`
}

// statement is a single entry-bearing line in a lexicon source.
type statement struct {
	Term  *termStmt  `parser:"  'term' @@"`
	Plain *plainStmt `parser:"| 'plain' @@"`
}

// termStmt declares a word together with its definition.
type termStmt struct {
	Name string `parser:"@String"`
	Def  string `parser:"'=' @String"`
}

// plainStmt declares words the book may use that deliberately carry no
// definition.
type plainStmt struct {
	Words []string `parser:"@String+"`
}

// lexiconLexer defines tokens for lexicon source files.
var lexiconLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comment lines (to end of line)
	{Name: "Comment", Pattern: `#[^\r\n]*`},
	// Quoted words and definitions; definitions never contain double quotes
	{Name: "String", Pattern: `"[^"]*"`},
	// Statement keywords: term, plain
	{Name: "Ident", Pattern: `[a-z]+`},
	{Name: "Eq", Pattern: `=`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

// lexiconParser is the Participle parser for lexicon sources.
var lexiconParser = participle.MustBuild[lexiconFile](
	participle.Lexer(lexiconLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
)

// parseLexicon parses a lexicon source from a string.
func parseLexicon(input string) (*lexiconFile, error) {
	return lexiconParser.ParseString("", input)
}
