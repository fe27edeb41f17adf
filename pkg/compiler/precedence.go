package compiler

import "github.com/wisplang/wisp/pkg/token"

// Precedence orders binding strength from loosest to tightest, per the
// grammar's precedence ladder: assignment < or < and < equality <
// comparison < term < factor < unary < call < primary.
type Precedence uint8

const (
	precNone       Precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * / %
	precUnary                 // ! -
	precCall                  // ()
	precPrimary
)

// prefixFn compiles a prefix expression (the token has already been
// consumed into c.previous). canAssign reports whether an = suffix is
// allowed at this precedence, for assignment-target validation.
type prefixFn func(c *Compiler, canAssign bool)

// infixFn compiles an infix expression given that its left operand has
// already been compiled and sits on the value stack (or, for local/global
// reads, is about to be emitted).
type infixFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     prefixFn
	infix      infixFn
	precedence Precedence
}

// rules is the Pratt parse table: one rule per token.Kind naming its prefix
// parselet, its infix parselet, and the precedence of its infix use. Sized
// generously past the last defined token.Kind.
var rules [64]parseRule

func rule(k token.Kind) *parseRule { return &rules[k] }

func init() {
	rules[token.LPAREN] = parseRule{prefix: grouping, infix: call, precedence: precCall}
	rules[token.MINUS] = parseRule{prefix: unary, infix: binary, precedence: precTerm}
	rules[token.PLUS] = parseRule{infix: binary, precedence: precTerm}
	rules[token.SLASH] = parseRule{infix: binary, precedence: precFactor}
	rules[token.STAR] = parseRule{infix: binary, precedence: precFactor}
	rules[token.PERCENT] = parseRule{infix: binary, precedence: precFactor}
	rules[token.BANG] = parseRule{prefix: unary}
	rules[token.BANGEQ] = parseRule{infix: binary, precedence: precEquality}
	rules[token.EQEQ] = parseRule{infix: binary, precedence: precEquality}
	rules[token.GT] = parseRule{infix: binary, precedence: precComparison}
	rules[token.GTEQ] = parseRule{infix: binary, precedence: precComparison}
	rules[token.LT] = parseRule{infix: binary, precedence: precComparison}
	rules[token.LTEQ] = parseRule{infix: binary, precedence: precComparison}
	rules[token.IDENT] = parseRule{prefix: variable}
	rules[token.STRING] = parseRule{prefix: str}
	rules[token.NUMBER] = parseRule{prefix: number}
	rules[token.AND] = parseRule{infix: and_, precedence: precAnd}
	rules[token.OR] = parseRule{infix: or_, precedence: precOr}
	rules[token.FALSE] = parseRule{prefix: literal}
	rules[token.NIL] = parseRule{prefix: literal}
	rules[token.TRUE] = parseRule{prefix: literal}
}
