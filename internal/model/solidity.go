package model

// Position is a source position. Line is 1-based, Column is 0-based.
type Position struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Location spans a node. End is the start of the node's last token.
type Location struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

// Node is implemented by every parsed declaration.
type Node interface {
	NodeType() string
	Location() Location
}

// ContractKind distinguishes contracts from interfaces and libraries.
type ContractKind string

const (
	// ContractKindContract covers plain and abstract contracts.
	ContractKindContract ContractKind = "contract"
	// ContractKindInterface represents an interface declaration.
	ContractKindInterface ContractKind = "interface"
	// ContractKindLibrary represents a library declaration.
	ContractKindLibrary ContractKind = "library"
)

// Visibility is the declared visibility of a function.
type Visibility string

const (
	// VisibilityDefault means no visibility specifier was written.
	VisibilityDefault  Visibility = "default"
	VisibilityExternal Visibility = "external"
	VisibilityPublic   Visibility = "public"
	VisibilityInternal Visibility = "internal"
	VisibilityPrivate  Visibility = "private"
)

// Node type names.
const (
	NodeSourceUnit         = "SourceUnit"
	NodePragmaDirective    = "PragmaDirective"
	NodeImportDirective    = "ImportDirective"
	NodeContractDefinition = "ContractDefinition"
	NodeFunctionDefinition = "FunctionDefinition"
	NodeModifierDefinition = "ModifierDefinition"
	NodeEventDefinition    = "EventDefinition"
	NodeCustomError        = "CustomErrorDefinition"
	NodeStructDefinition   = "StructDefinition"
	NodeEnumDefinition     = "EnumDefinition"
	NodeUsingForDirective  = "UsingForDeclaration"
	NodeTypeDefinition     = "TypeDefinition"
	NodeStateVariable      = "StateVariableDeclaration"
)

// SourceUnit is the parsed form of one Solidity file.
type SourceUnit struct {
	Children []Node   `json:"children"`
	Loc      Location `json:"loc"`
}

// NodeType implements Node.
func (u *SourceUnit) NodeType() string { return NodeSourceUnit }

// Location implements Node.
func (u *SourceUnit) Location() Location { return u.Loc }

// Contracts returns the contract declarations of the unit in document order.
func (u *SourceUnit) Contracts() []*ContractDefinition {
	var contracts []*ContractDefinition

	for _, child := range u.Children {
		if c, ok := child.(*ContractDefinition); ok {
			contracts = append(contracts, c)
		}
	}

	return contracts
}

// PragmaDirective is a `pragma name value;` line.
type PragmaDirective struct {
	Name  string   `json:"name"`
	Value string   `json:"value"`
	Loc   Location `json:"loc"`
}

func (p *PragmaDirective) NodeType() string   { return NodePragmaDirective }
func (p *PragmaDirective) Location() Location { return p.Loc }

// ImportDirective is an import statement; Path is the unquoted import path.
type ImportDirective struct {
	Path string   `json:"path"`
	Loc  Location `json:"loc"`
}

func (i *ImportDirective) NodeType() string   { return NodeImportDirective }
func (i *ImportDirective) Location() Location { return i.Loc }

// Declaration is any named declaration probe does not inspect further
// (events, errors, structs, enums, modifiers, state variables, ...).
type Declaration struct {
	Type string   `json:"type"`
	Name string   `json:"name,omitempty"`
	Loc  Location `json:"loc"`
}

func (d *Declaration) NodeType() string   { return d.Type }
func (d *Declaration) Location() Location { return d.Loc }

// ContractDefinition is a contract, interface or library.
type ContractDefinition struct {
	Type          string       `json:"type"`
	Name          string       `json:"name"`
	Kind          ContractKind `json:"kind"`
	IsAbstract    bool         `json:"isAbstract"`
	BaseContracts []string     `json:"baseContracts"`
	SubNodes      []Node       `json:"subNodes"`
	Loc           Location     `json:"loc"`
}

func (c *ContractDefinition) NodeType() string   { return NodeContractDefinition }
func (c *ContractDefinition) Location() Location { return c.Loc }

// Parameter is one entry of a parameter or return list.
type Parameter struct {
	TypeName        string   `json:"typeName"`
	StorageLocation string   `json:"storageLocation,omitempty"`
	Name            string   `json:"name,omitempty"`
	Loc             Location `json:"loc"`
}

// FunctionDefinition is a function, constructor, fallback or receive
// declaration. Its JSON form is passed to the editor as command argument.
type FunctionDefinition struct {
	Type             string      `json:"type"`
	Name             string      `json:"name"`
	Contract         string      `json:"contract,omitempty"`
	Parameters       []Parameter `json:"parameters"`
	ReturnParameters []Parameter `json:"returnParameters,omitempty"`
	Visibility       Visibility  `json:"visibility"`
	StateMutability  string      `json:"stateMutability,omitempty"`
	Modifiers        []string    `json:"modifiers,omitempty"`
	IsConstructor    bool        `json:"isConstructor"`
	IsFallback       bool        `json:"isFallback"`
	IsReceiveEther   bool        `json:"isReceiveEther"`
	IsVirtual        bool        `json:"isVirtual"`
	HasBody          bool        `json:"hasBody"`
	Loc              Location    `json:"loc"`
}

func (f *FunctionDefinition) NodeType() string   { return NodeFunctionDefinition }
func (f *FunctionDefinition) Location() Location { return f.Loc }

// DisplayName returns the function name, or the special kind for unnamed ones.
func (f *FunctionDefinition) DisplayName() string {
	switch {
	case f.Name != "":
		return f.Name
	case f.IsConstructor:
		return "constructor"
	case f.IsReceiveEther:
		return "receive"
	case f.IsFallback:
		return "fallback"
	}

	return ""
}

// DebugTarget pairs a selected function with the file it was found in.
type DebugTarget struct {
	Source   File
	Function *FunctionDefinition
}
