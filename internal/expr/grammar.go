package expr

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Number", Pattern: `(\d+\.\d*|\.\d+|\d+)([eE][-+]?\d+)?`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Scope", Pattern: `::`},
	{Name: "Compare", Pattern: `==|!=|<=|>=|<|>|=`},
	{Name: "Operator", Pattern: `[-+*/]`},
	{Name: "Punct", Pattern: `[(),.]`},
})

// pExpr is a sum of terms.
type pExpr struct {
	Pos  lexer.Position
	Left *pTerm    `parser:"@@"`
	Rest []*pAddOp `parser:"@@*"`
}

type pAddOp struct {
	Pos  lexer.Position
	Op   string `parser:"@(\"+\" | \"-\")"`
	Term *pTerm `parser:"@@"`
}

// pTerm is a product of unary factors.
type pTerm struct {
	Pos  lexer.Position
	Left *pUnary   `parser:"@@"`
	Rest []*pMulOp `parser:"@@*"`
}

type pMulOp struct {
	Pos    lexer.Position
	Op     string  `parser:"@(\"*\" | \"/\")"`
	Factor *pUnary `parser:"@@"`
}

type pUnary struct {
	Pos     lexer.Position
	Negated *pUnary   `parser:"  \"-\" @@"`
	Primary *pPrimary `parser:"| @@"`
}

type pPrimary struct {
	Pos    lexer.Position
	Number *string `parser:"  @Number"`
	String *string `parser:"| @String"`
	Call   *pCall  `parser:"| @@"`
	Group  *pExpr  `parser:"| \"(\" @@ \")\""`
}

// pCall covers bare names, Fn(args), Obj.Fn(args) and Obj.Behavior::Fn(args).
type pCall struct {
	Pos    lexer.Position
	Name   string   `parser:"@Ident"`
	Member *pMember `parser:"@@?"`
	Args   *pArgs   `parser:"@@?"`
}

type pMember struct {
	Pos      lexer.Position
	Name     string  `parser:"\".\" @Ident"`
	Function *string `parser:"( \"::\" @Ident )?"`
}

type pArgs struct {
	Pos  lexer.Position
	List []*pExpr `parser:"\"(\" ( @@ ( \",\" @@ )* )? \")\""`
}

var grammar = participle.MustBuild[pExpr](
	participle.Lexer(exprLexer),
	participle.Elide("whitespace"),
	participle.UseLookahead(2),
)
