package ast

// Kind tags a node's grammar category. It is a flat enumeration rather than
// a class hierarchy: visitor dispatch switches on Kind, and attribute tables
// validate against it, instead of relying on polymorphic node subtypes.
type Kind int

// Node kinds. The target grammar is a C-family curly-brace language; this
// list covers the structural categories the rule engine and parser need,
// not every grammar production.
const (
	KindInvalid Kind = iota
	KindCompilationUnit
	KindPackageDeclaration
	KindImportDeclaration
	KindTypeDeclaration
	KindFieldDeclaration
	KindMethodDeclaration
	KindParameter
	KindBlock
	KindStatement
	KindExpression
	KindBinaryExpression
	KindMethodInvocation
	KindIdentifier
	KindIntegerLiteral
	KindStringLiteral
	KindAnnotation
	KindComment
	KindWhitespace
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "INVALID"
	case KindCompilationUnit:
		return "COMPILATION_UNIT"
	case KindPackageDeclaration:
		return "PACKAGE_DECLARATION"
	case KindImportDeclaration:
		return "IMPORT_DECLARATION"
	case KindTypeDeclaration:
		return "TYPE_DECLARATION"
	case KindFieldDeclaration:
		return "FIELD_DECLARATION"
	case KindMethodDeclaration:
		return "METHOD_DECLARATION"
	case KindParameter:
		return "PARAMETER"
	case KindBlock:
		return "BLOCK"
	case KindStatement:
		return "STATEMENT"
	case KindExpression:
		return "EXPRESSION"
	case KindBinaryExpression:
		return "BINARY_EXPRESSION"
	case KindMethodInvocation:
		return "METHOD_INVOCATION"
	case KindIdentifier:
		return "IDENTIFIER"
	case KindIntegerLiteral:
		return "INTEGER_LITERAL"
	case KindStringLiteral:
		return "STRING_LITERAL"
	case KindAnnotation:
		return "ANNOTATION"
	case KindComment:
		return "COMMENT"
	case KindWhitespace:
		return "WHITESPACE"
	default:
		return "UNKNOWN"
	}
}
