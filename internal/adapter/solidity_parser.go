package adapter

import (
	"fmt"
	"strings"

	"github.com/antlr4-go/antlr/v4"
	"github.com/unpackdev/solgo/parser"

	m "probe.dev/pkg/probe/internal/model"
)

// ParseError reports syntactically invalid Solidity source.
type ParseError struct {
	Filename string
	Line     int
	Column   int
	Message  string
}

func (e *ParseError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}

	return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Message)
}

var visibilityKeywords = map[string]m.Visibility{
	"external": m.VisibilityExternal,
	"public":   m.VisibilityPublic,
	"internal": m.VisibilityInternal,
	"private":  m.VisibilityPrivate,
}

var mutabilityKeywords = map[string]bool{
	"pure":    true,
	"view":    true,
	"payable": true,
}

// syntaxErrors keeps the first error reported by the lexer or the parser.
type syntaxErrors struct {
	*antlr.DefaultErrorListener
	filename string
	first    *ParseError
}

func (s *syntaxErrors) SyntaxError(_ antlr.Recognizer, _ interface{}, line, column int, msg string, _ antlr.RecognitionException) {
	if s.first != nil {
		return
	}

	s.first = &ParseError{Filename: s.filename, Line: line, Column: column, Message: msg}
}

// treeBuilder maps the grammar's parse tree onto the model.
type treeBuilder struct {
	src []rune
}

// parseSource runs the Solidity grammar over src. Any lexer or parser
// error fails the whole unit.
func parseSource(filename, src string) (*m.SourceUnit, error) {
	listener := &syntaxErrors{DefaultErrorListener: antlr.NewDefaultErrorListener(), filename: filename}

	lexer := parser.NewSolidityLexer(antlr.NewInputStream(src))
	lexer.RemoveErrorListeners()
	lexer.AddErrorListener(listener)

	p := parser.NewSolidityParser(antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel))
	p.RemoveErrorListeners()
	p.AddErrorListener(listener)

	tree := p.SourceUnit()
	if listener.first != nil {
		return nil, listener.first
	}

	b := &treeBuilder{src: []rune(src)}

	return b.sourceUnit(tree), nil
}

func (b *treeBuilder) sourceUnit(tree antlr.Tree) *m.SourceUnit {
	unit := &m.SourceUnit{}

	for _, child := range tree.GetChildren() {
		if node := b.node(child, ""); node != nil {
			unit.Children = append(unit.Children, node)
		}
	}

	if len(unit.Children) > 0 {
		unit.Loc = m.Location{
			Start: unit.Children[0].Location().Start,
			End:   unit.Children[len(unit.Children)-1].Location().End,
		}
	}

	return unit
}

// node converts one declaration. contract is the enclosing contract name,
// empty at file level. Unknown subtrees yield nil.
func (b *treeBuilder) node(tree antlr.Tree, contract string) m.Node {
	switch ctx := tree.(type) {
	case *parser.PragmaDirectiveContext:
		return b.pragma(ctx)
	case *parser.ImportDirectiveContext:
		return b.importDirective(ctx)
	case *parser.ContractDefinitionContext:
		return b.contract(ctx, m.ContractKindContract)
	case *parser.InterfaceDefinitionContext:
		return b.contract(ctx, m.ContractKindInterface)
	case *parser.LibraryDefinitionContext:
		return b.contract(ctx, m.ContractKindLibrary)
	case *parser.ContractBodyElementContext:
		if ctx.GetChildCount() == 0 {
			return nil
		}

		return b.node(ctx.GetChild(0), contract)
	case *parser.FunctionDefinitionContext,
		*parser.ConstructorDefinitionContext,
		*parser.FallbackFunctionDefinitionContext,
		*parser.ReceiveFunctionDefinitionContext:
		return b.function(ctx.(antlr.ParserRuleContext), contract)
	case *parser.ModifierDefinitionContext:
		return b.declaration(ctx, m.NodeModifierDefinition)
	case *parser.EventDefinitionContext:
		return b.declaration(ctx, m.NodeEventDefinition)
	case *parser.ErrorDefinitionContext:
		return b.declaration(ctx, m.NodeCustomError)
	case *parser.StructDefinitionContext:
		return b.declaration(ctx, m.NodeStructDefinition)
	case *parser.EnumDefinitionContext:
		return b.declaration(ctx, m.NodeEnumDefinition)
	case *parser.UserDefinedValueTypeDefinitionContext:
		return b.declaration(ctx, m.NodeTypeDefinition)
	case *parser.UsingDirectiveContext:
		return b.declaration(ctx, m.NodeUsingForDirective)
	case *parser.StateVariableDeclarationContext:
		return b.declaration(ctx, m.NodeStateVariable)
	case *parser.ConstantVariableDeclarationContext:
		return b.declaration(ctx, m.NodeStateVariable)
	}

	return nil
}

func (b *treeBuilder) pragma(ctx *parser.PragmaDirectiveContext) m.Node {
	var parts []string

	children := ctx.GetChildren()
	// skip the keyword and the terminating semicolon
	for i := 1; i < len(children)-1; i++ {
		if term, ok := children[i].(antlr.TerminalNode); ok {
			parts = append(parts, term.GetText())
		}
	}

	fields := strings.Fields(strings.Join(parts, " "))
	pragma := &m.PragmaDirective{Loc: span(ctx)}

	if len(fields) > 0 {
		pragma.Name = fields[0]
		pragma.Value = strings.Join(fields[1:], " ")
	}

	return pragma
}

func (b *treeBuilder) importDirective(ctx *parser.ImportDirectiveContext) m.Node {
	imp := &m.ImportDirective{Loc: span(ctx)}

	if path, ok := firstChild[*parser.PathContext](ctx); ok {
		imp.Path = unquote(path.GetText())
	}

	return imp
}

func (b *treeBuilder) contract(ctx antlr.ParserRuleContext, kind m.ContractKind) m.Node {
	contract := &m.ContractDefinition{
		Type: m.NodeContractDefinition,
		Kind: kind,
		Loc:  span(ctx),
	}

	if name, ok := firstChild[*parser.IdentifierContext](ctx); ok {
		contract.Name = name.GetText()
	}

	for _, child := range ctx.GetChildren() {
		if term, ok := child.(antlr.TerminalNode); ok && term.GetText() == "abstract" {
			contract.IsAbstract = true
		}
	}

	for _, base := range findAll[*parser.InheritanceSpecifierContext](ctx) {
		if path, ok := firstChild[*parser.IdentifierPathContext](base); ok {
			contract.BaseContracts = append(contract.BaseContracts, path.GetText())
		}
	}

	for _, element := range childrenOf[*parser.ContractBodyElementContext](ctx) {
		if node := b.node(element, contract.Name); node != nil {
			contract.SubNodes = append(contract.SubNodes, node)
		}
	}

	return contract
}

// function covers named functions and the constructor, fallback and
// receive forms; they differ only in their leading keyword.
func (b *treeBuilder) function(ctx antlr.ParserRuleContext, contract string) m.Node {
	fn := &m.FunctionDefinition{
		Type:       m.NodeFunctionDefinition,
		Contract:   contract,
		Visibility: m.VisibilityDefault,
		Parameters: []m.Parameter{},
		Loc:        span(ctx),
	}

	returns := false

	for i, child := range ctx.GetChildren() {
		switch c := child.(type) {
		case antlr.TerminalNode:
			text := c.GetText()

			switch {
			case i == 0 && text == "constructor":
				fn.IsConstructor = true
			case i == 0 && text == "fallback":
				fn.IsFallback = true
			case i == 0 && text == "receive":
				fn.IsReceiveEther = true
			case i == 1 && (text == "fallback" || text == "receive"):
				fn.Name = text
			case text == "virtual":
				fn.IsVirtual = true
			case text == "returns":
				returns = true
			case visibilityKeywords[text] != "":
				fn.Visibility = visibilityKeywords[text]
			case mutabilityKeywords[text]:
				fn.StateMutability = text
			}
		case *parser.IdentifierContext:
			fn.Name = c.GetText()
		case *parser.VisibilityContext:
			fn.Visibility = visibilityKeywords[c.GetText()]
		case *parser.StateMutabilityContext:
			fn.StateMutability = c.GetText()
		case *parser.ModifierInvocationContext:
			if path, ok := firstChild[*parser.IdentifierPathContext](c); ok {
				fn.Modifiers = append(fn.Modifiers, path.GetText())
			}
		case *parser.ParameterListContext:
			if returns {
				fn.ReturnParameters = b.parameters(c)
			} else {
				fn.Parameters = b.parameters(c)
			}
		case *parser.BlockContext:
			fn.HasBody = true
		}
	}

	return fn
}

func (b *treeBuilder) parameters(list *parser.ParameterListContext) []m.Parameter {
	params := []m.Parameter{}

	for _, decl := range childrenOf[*parser.ParameterDeclarationContext](list) {
		param := m.Parameter{Loc: span(decl)}

		if typ, ok := firstChild[*parser.TypeNameContext](decl); ok {
			param.TypeName = b.text(typ)
		}

		if location, ok := firstChild[*parser.DataLocationContext](decl); ok {
			param.StorageLocation = location.GetText()
		}

		if name, ok := firstChild[*parser.IdentifierContext](decl); ok {
			param.Name = name.GetText()
		}

		params = append(params, param)
	}

	return params
}

// declaration records a node probe does not inspect further. The name is
// the first identifier directly under the node, if any.
func (b *treeBuilder) declaration(ctx antlr.ParserRuleContext, typ string) m.Node {
	decl := &m.Declaration{Type: typ, Loc: span(ctx)}

	if name, ok := firstChild[*parser.IdentifierContext](ctx); ok {
		decl.Name = name.GetText()
	}

	return decl
}

// text returns the source covered by ctx with its original spacing.
func (b *treeBuilder) text(ctx antlr.ParserRuleContext) string {
	start, stop := ctx.GetStart(), ctx.GetStop()
	if start == nil || stop == nil || start.GetStart() < 0 || stop.GetStop() >= len(b.src) || stop.GetStop() < start.GetStart() {
		return ctx.GetText()
	}

	return string(b.src[start.GetStart() : stop.GetStop()+1])
}

// span locates ctx from its first token to the start of its last token.
func span(ctx antlr.ParserRuleContext) m.Location {
	var loc m.Location

	if start := ctx.GetStart(); start != nil {
		loc.Start = m.Position{Line: start.GetLine(), Column: start.GetColumn()}
	}

	if stop := ctx.GetStop(); stop != nil {
		loc.End = m.Position{Line: stop.GetLine(), Column: stop.GetColumn()}
	}

	return loc
}

func unquote(literal string) string {
	if len(literal) >= 2 {
		return literal[1 : len(literal)-1]
	}

	return literal
}

func childrenOf[T antlr.Tree](tree antlr.Tree) []T {
	var found []T

	for _, child := range tree.GetChildren() {
		if typed, ok := child.(T); ok {
			found = append(found, typed)
		}
	}

	return found
}

func firstChild[T antlr.Tree](tree antlr.Tree) (T, bool) {
	for _, child := range tree.GetChildren() {
		if typed, ok := child.(T); ok {
			return typed, true
		}
	}

	var zero T

	return zero, false
}

// findAll searches the header of a declaration; contract bodies and
// blocks are not entered.
func findAll[T antlr.Tree](tree antlr.Tree) []T {
	var found []T

	for _, child := range tree.GetChildren() {
		switch child.(type) {
		case *parser.ContractBodyElementContext, *parser.BlockContext:
			continue
		}

		if typed, ok := child.(T); ok {
			found = append(found, typed)
			continue
		}

		found = append(found, findAll[T](child)...)
	}

	return found
}
