package ast

// Attribute is implemented by typed attribute records attached to nodes via
// Arena.AllocateWithAttribute. ValidKind identifies the single node Kind an
// attribute of this type may be attached to; GetAttribute rejects a lookup
// when the node's actual kind disagrees.
type Attribute interface {
	ValidKind() Kind
}

// ImportAttribute carries the resolved name of an IMPORT_DECLARATION node.
type ImportAttribute struct {
	QualifiedName string
	Wildcard      bool
}

// ValidKind implements Attribute.
func (ImportAttribute) ValidKind() Kind { return KindImportDeclaration }

// TypeDeclarationAttribute carries the declared name of a TYPE_DECLARATION node.
type TypeDeclarationAttribute struct {
	TypeName string
}

// ValidKind implements Attribute.
func (TypeDeclarationAttribute) ValidKind() Kind { return KindTypeDeclaration }

// PackageAttribute carries the package name of a PACKAGE_DECLARATION node.
type PackageAttribute struct {
	Name string
}

// ValidKind implements Attribute.
func (PackageAttribute) ValidKind() Kind { return KindPackageDeclaration }

// TriviaAttribute carries leading/trailing comments and whitespace/formatting
// hints for a node. Trivia is part of the node, not a grammar child, so it is
// modeled as an attribute rather than as sibling nodes.
type TriviaAttribute struct {
	LeadingComments  []string
	TrailingComments []string
	LeadingBlankLine bool
}

// ValidKind implements Attribute. Trivia may attach to any node kind, so it
// reports KindInvalid and is exempted from the kind check in GetAttribute.
func (TriviaAttribute) ValidKind() Kind { return KindInvalid }
