package parser

import (
	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/diagnostics"
	"github.com/bolt-lang/bolt/internal/token"
	"github.com/bolt-lang/bolt/internal/types"
)

func (p *Parser) parseIf(scope *ast.Block) (ast.Statement, *diagnostics.Error) {
	scope.FunctionDepth++

	start, err := p.expectNext(token.IF)
	if err != nil {
		return nil, err
	}
	span := start.Span

	condition, err := p.parseExpression(scope)
	if err != nil {
		return nil, err
	}
	if !types.Equal(condition.Type, types.Boolean) {
		return nil, diagnostics.WrongType(types.Boolean.String(), condition.Type.String(), span.Extend(condition.Span))
	}

	trueBlock, err := p.parseBlock(scope)
	if err != nil {
		return nil, err
	}

	var falseBlock *ast.Block
	var elseIfs []*ast.ElseIfBranch

	for {
		next, nerr := p.peek()
		if nerr != nil {
			break
		}
		if next.Type != token.ELSE {
			break
		}

		after, aerr := p.peekNth(1)
		if aerr == nil && after.Type == token.IF {
			span = span.Extend(after.Span)
			p.pos += 2

			condition, err := p.parseExpression(scope)
			if err != nil {
				return nil, err
			}
			if !types.Equal(condition.Type, types.Boolean) {
				return nil, diagnostics.WrongType(types.Boolean.String(), condition.Type.String(), span.Extend(condition.Span))
			}
			body, err := p.parseBlock(scope)
			if err != nil {
				return nil, err
			}

			elseIfs = append(elseIfs, &ast.ElseIfBranch{
				Condition: condition,
				Body:      body,
				Span:      span.Extend(body.Span),
			})
			continue
		}

		span = span.Extend(next.Span)
		p.pos++
		falseBlock, err = p.parseBlock(scope)
		if err != nil {
			return nil, err
		}
		break
	}

	return &ast.IfStatement{
		Condition:   condition,
		TrueBranch:  trueBlock,
		ElseIfs:     elseIfs,
		FalseBranch: falseBlock,
		Span:        span,
	}, nil
}

func (p *Parser) parseWhile(scope *ast.Block) (ast.Statement, *diagnostics.Error) {
	scope.FunctionDepth++

	start, err := p.expectNext(token.WHILE)
	if err != nil {
		return nil, err
	}

	condition, err := p.parseExpression(scope)
	if err != nil {
		return nil, err
	}
	if !types.Equal(condition.Type, types.Boolean) {
		return nil, diagnostics.WrongType(types.Boolean.String(), condition.Type.String(), start.Span.Extend(condition.Span))
	}

	body, err := p.parseBlock(scope)
	if err != nil {
		return nil, err
	}

	return &ast.WhileStatement{
		Condition: condition,
		Body:      body,
		Span:      start.Span.Extend(body.Span),
	}, nil
}

func (p *Parser) parseReturn(scope *ast.Block) (ast.Statement, *diagnostics.Error) {
	start, err := p.expectNext(token.RETURN)
	if err != nil {
		return nil, err
	}

	value, err := p.parseExpression(scope)
	if err != nil {
		return nil, err
	}

	return &ast.ReturnStatement{
		Value: value,
		Span:  start.Span.Extend(value.Span),
	}, nil
}

// BranchReturn classifies an if/else-if/else chain by how its branches
// terminate.
type BranchReturn int

const (
	AllReturn BranchReturn = iota
	SomeReturn
	NoneReturn
)

// ValidateIfReturn determines the common return type of a conditional's
// branches and whether every branch, some branch or no branch returns.
// Mismatching branch types are an error.
func ValidateIfReturn(trueBranch *ast.Block, elseIfs []*ast.ElseIfBranch, falseBranch *ast.Block) (types.DataType, BranchReturn, *diagnostics.Error) {
	var returnType types.DataType
	allReturn := true
	noReturn := true

	branchReturns := make([]types.DataType, 0, len(elseIfs)+2)

	trueReturn, err := validateBlockReturn(trueBranch)
	if err != nil {
		return nil, NoneReturn, err
	}
	branchReturns = append(branchReturns, trueReturn)

	for _, branch := range elseIfs {
		ret, err := validateBlockReturn(branch.Body)
		if err != nil {
			return nil, NoneReturn, err
		}
		branchReturns = append(branchReturns, ret)
	}

	var falseReturn types.DataType
	if falseBranch != nil {
		falseReturn, err = validateBlockReturn(falseBranch)
		if err != nil {
			return nil, NoneReturn, err
		}
	}
	branchReturns = append(branchReturns, falseReturn)

	for _, ret := range branchReturns {
		if ret != nil {
			noReturn = false
			if returnType != nil {
				if !returnType.Equal(ret) {
					return nil, NoneReturn, diagnostics.WrongType(returnType.String(), ret.String(), trueBranch.Span)
				}
			} else {
				returnType = ret
			}
		} else {
			allReturn = false
		}
	}

	switch {
	case allReturn:
		return returnType, AllReturn, nil
	case noReturn:
		return nil, NoneReturn, nil
	default:
		return nil, SomeReturn, nil
	}
}

// validateBlockReturn infers a block's return type from its direct
// statements. A nil result means the block never returns. A conditional that
// returns from only some branches is legal only when the block continues
// into an unconditional return afterwards; otherwise the chain is flagged as
// a ConditionalReturnMismatch.
func validateBlockReturn(block *ast.Block) (types.DataType, *diagnostics.Error) {
	var returnType types.DataType
	var conditionalReturn *ast.IfStatement

	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.ReturnStatement:
			if returnType != nil {
				if !returnType.Equal(s.Value.Type) {
					return nil, diagnostics.WrongType(returnType.String(), s.Value.Type.String(), s.Value.Span)
				}
			} else {
				returnType = s.Value.Type
			}
			conditionalReturn = nil

		case *ast.IfStatement:
			ifReturnType, kind, err := ValidateIfReturn(s.TrueBranch, s.ElseIfs, s.FalseBranch)
			if err != nil {
				return nil, err
			}

			conditional := kind == SomeReturn && block.FunctionDepth < 2

			if ifReturnType != nil {
				if returnType != nil {
					if !returnType.Equal(ifReturnType) {
						return nil, diagnostics.WrongType(returnType.String(), ifReturnType.String(), block.Span)
					}
				} else {
					returnType = ifReturnType
				}
			}

			if conditional {
				conditionalReturn = s
			}
		}
	}

	if conditionalReturn != nil {
		span := conditionalReturn.TrueBranch.Span
		if conditionalReturn.FalseBranch != nil {
			span = span.Extend(conditionalReturn.FalseBranch.Span)
		}
		return nil, diagnostics.ConditionalReturnMismatch(span)
	}

	return returnType, nil
}
