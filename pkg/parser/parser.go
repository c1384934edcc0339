// Package parser lowers Java source text into an arena-backed AST using
// tree-sitter, implementing the pipeline.Parser collaborator interface.
package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	forest "github.com/alexaandru/go-sitter-forest"
	_ "github.com/alexaandru/go-sitter-forest/java" // registers "java" into forest's language registry
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/styler-dev/styler/pkg/ast"
)

// Sentinel errors for parser construction and use.
var (
	ErrLanguageUnavailable = errors.New("parser: tree-sitter language not available")
	ErrEmptySource         = errors.New("parser: source produced no root node")
	errPoolType            = errors.New("parser: pool returned unexpected type")
)

// statementSuffix and expressionSuffix catch the grammar's many
// statement/expression productions (if_statement, for_statement,
// assignment_expression, ...) without enumerating every one individually.
const (
	statementSuffix  = "_statement"
	expressionSuffix = "_expression"
)

// kindByGrammarType maps the java grammar's node type strings to the
// arena's flat Kind enumeration. Types absent here fall through to the
// suffix rules below, then to KindUnknown.
var kindByGrammarType = map[string]ast.Kind{
	"program":                     ast.KindCompilationUnit,
	"package_declaration":         ast.KindPackageDeclaration,
	"import_declaration":          ast.KindImportDeclaration,
	"class_declaration":           ast.KindTypeDeclaration,
	"interface_declaration":       ast.KindTypeDeclaration,
	"enum_declaration":            ast.KindTypeDeclaration,
	"record_declaration":          ast.KindTypeDeclaration,
	"annotation_type_declaration": ast.KindTypeDeclaration,
	"field_declaration":           ast.KindFieldDeclaration,
	"method_declaration":          ast.KindMethodDeclaration,
	"constructor_declaration":     ast.KindMethodDeclaration,
	"formal_parameter":            ast.KindParameter,
	"spread_parameter":            ast.KindParameter,
	"block":                       ast.KindBlock,
	"binary_expression":           ast.KindBinaryExpression,
	"method_invocation":           ast.KindMethodInvocation,
	"identifier":                  ast.KindIdentifier,
	"type_identifier":             ast.KindIdentifier,
	"decimal_integer_literal":     ast.KindIntegerLiteral,
	"hex_integer_literal":         ast.KindIntegerLiteral,
	"octal_integer_literal":       ast.KindIntegerLiteral,
	"binary_integer_literal":      ast.KindIntegerLiteral,
	"string_literal":              ast.KindStringLiteral,
	"marker_annotation":           ast.KindAnnotation,
	"annotation":                  ast.KindAnnotation,
	"line_comment":                ast.KindComment,
	"block_comment":               ast.KindComment,
}

func kindFor(grammarType string) ast.Kind {
	if kind, ok := kindByGrammarType[grammarType]; ok {
		return kind
	}

	if strings.HasSuffix(grammarType, statementSuffix) {
		return ast.KindStatement
	}

	if strings.HasSuffix(grammarType, expressionSuffix) {
		return ast.KindExpression
	}

	return ast.KindUnknown
}

// Parser lowers Java source into an ast.Arena. Each call borrows a
// *sitter.Parser from a pool (tree-sitter parsers are not safe for
// concurrent use), matching the teacher's pooled-parser pattern so
// multiple workers never contend on a single tree-sitter parser.
type Parser struct {
	pool sync.Pool
}

// New builds a Parser bound to the java grammar. Tree-sitter grammar
// registration panics on an unknown language name instead of returning an
// error; New recovers and turns that into ErrLanguageUnavailable.
func New() (*Parser, error) {
	lang := loadLanguage("java")
	if lang == nil {
		return nil, fmt.Errorf("%w: java", ErrLanguageUnavailable)
	}

	p := &Parser{}
	p.pool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}

	return p, nil
}

func loadLanguage(name string) (lang *sitter.Language) {
	defer func() {
		_ = recover() //nolint:errcheck // forest.GetLanguage panics on an unknown grammar name
	}()

	return forest.GetLanguage(name)
}

// Parse implements pipeline.Parser: it parses source with tree-sitter and
// lowers the resulting concrete syntax tree into an arena-backed AST. The
// tree-sitter tree itself is closed before Parse returns; only the arena
// survives, owned by the caller.
func (p *Parser) Parse(ctx context.Context, filePath string, source []byte) (*ast.Arena, ast.NodeIndex, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, ast.NoIndex, errPoolType
	}

	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, source)
	if err != nil {
		return nil, ast.NoIndex, fmt.Errorf("parser: parse %s: %w", filePath, err)
	}

	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, ast.NoIndex, fmt.Errorf("%w: %s", ErrEmptySource, filePath)
	}

	arena := ast.NewArena(0)
	rootIdx := lower(arena, root)

	return arena, rootIdx, nil
}

// lower recursively copies a tree-sitter subtree into the arena,
// iterating named children only (punctuation and other anonymous tokens
// are reconstructed from source offsets by the rule engine, not modeled
// as arena nodes).
func lower(arena *ast.Arena, tsNode sitter.Node) ast.NodeIndex {
	kind := kindFor(tsNode.Type())
	idx := arena.Allocate(kind, uint32(tsNode.StartByte()), uint32(tsNode.EndByte()))

	prevSibling := ast.NoIndex
	childCount := tsNode.NamedChildCount()

	for i := range childCount {
		child := tsNode.NamedChild(i)
		childIdx := lower(arena, child)

		arena.SetParent(childIdx, idx)

		if prevSibling == ast.NoIndex {
			arena.SetFirstChild(idx, childIdx)
		} else {
			arena.SetNextSibling(prevSibling, childIdx)
		}

		prevSibling = childIdx
	}

	return idx
}
