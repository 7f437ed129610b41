package expr

import (
	"errors"
	"go/constant"
	"go/token"
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// number checks a numeric literal and returns it spelled as a decimal Go
// literal. Integers lose their leading zeros so they are not read as octal.
func (c *checker) number(pos lexer.Position, text string) (*Number, *Error) {
	if _, err := strconv.ParseFloat(text, 64); errors.Is(err, strconv.ErrRange) {
		return nil, newError(ErrorRange, pos, "number %s is out of range", text)
	}
	kind := token.FLOAT
	if strings.Trim(text, "0123456789") == "" {
		kind = token.INT
		if trimmed := strings.TrimLeft(text, "0"); trimmed != text {
			text = trimmed
			if text == "" {
				text = "0"
			}
		}
	}
	n := &Number{At: pos.Offset, Value: text}
	c.fold(n, constant.MakeFromLiteral(text, kind, 0))
	return n, nil
}

// fold records the value of a constant node. Generated code keeps constant
// subexpressions constant, so the compiler evaluates them exactly.
func (c *checker) fold(n Node, v constant.Value) {
	if v.Kind() == constant.Unknown {
		return
	}
	if c.consts == nil {
		c.consts = make(map[Node]constant.Value)
	}
	c.consts[n] = v
}

// negate folds -operand when operand is constant.
func (c *checker) negate(n *Negate) {
	if v, ok := c.consts[n.Operand]; ok {
		c.fold(n, constant.UnaryOp(token.SUB, v, 0))
	}
}

// binary folds a numeric operation on constants. A constant divisor must not
// be zero and no folded value may overflow a float64.
func (c *checker) binary(pos lexer.Position, b *Binary) *Error {
	right, ok := c.consts[b.Right]
	if b.Op == '/' && ok && constant.Sign(right) == 0 {
		return newError(ErrorRange, pos, "division by zero")
	}
	left, lok := c.consts[b.Left]
	if !ok || !lok {
		return nil
	}
	op := map[byte]token.Token{'+': token.ADD, '-': token.SUB, '*': token.MUL, '/': token.QUO}[b.Op]
	v := constant.BinaryOp(left, op, right)
	if f, _ := constant.Float64Val(constant.ToFloat(v)); math.IsInf(f, 0) {
		return newError(ErrorRange, pos, "constant %s overflows a number", b)
	}
	c.fold(b, v)
	return nil
}
