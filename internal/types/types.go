// Package types provides generic Mangle fact/atom plumbing. No other
// package in this module imports it: internal/policy builds on mangle.Fact
// and talks to internal/mangle.Engine directly.
package types

import (
	"fmt"
	"strings"

	"github.com/google/mangle/ast"
)

// =============================================================================
// MANGLE FACT TYPES
// =============================================================================

// MangleAtom represents a Mangle name constant (starting with /).
// This explicit type avoids ambiguity between strings and atoms.
type MangleAtom string

// Fact represents a single logical fact (atom) in the EDB.
type Fact struct {
	Predicate string
	Args      []interface{}
}

// String returns the Datalog string representation of the fact.
func (f Fact) String() string {
	var args []string
	for _, arg := range f.Args {
		switch v := arg.(type) {
		case MangleAtom:
			args = append(args, string(v))
		case string:
			// Handle Mangle name constants (start with /)
			if strings.HasPrefix(v, "/") {
				args = append(args, v)
			} else {
				args = append(args, fmt.Sprintf("%q", v))
			}
		case int:
			args = append(args, fmt.Sprintf("%d", v))
		case int64:
			args = append(args, fmt.Sprintf("%d", v))
		case float64:
			args = append(args, fmt.Sprintf("%f", v))
		case bool:
			if v {
				args = append(args, "/true")
			} else {
				args = append(args, "/false")
			}
		default:
			args = append(args, fmt.Sprintf("%v", v))
		}
	}
	return fmt.Sprintf("%s(%s).", f.Predicate, strings.Join(args, ", "))
}

// ToAtom converts a Fact to a Mangle AST Atom for direct store insertion.
func (f Fact) ToAtom() (ast.Atom, error) {
	var terms []ast.BaseTerm
	for _, arg := range f.Args {
		switch v := arg.(type) {
		case MangleAtom:
			c, err := ast.Name(string(v))
			if err != nil {
				return ast.Atom{}, err
			}
			terms = append(terms, c)
		case string:
			if strings.HasPrefix(v, "/") {
				// Name constant
				c, err := ast.Name(v)
				if err != nil {
					return ast.Atom{}, err
				}
				terms = append(terms, c)
			} else {
				// String constant
				terms = append(terms, ast.String(v))
			}
		case int:
			terms = append(terms, ast.Number(int64(v)))
		case int64:
			terms = append(terms, ast.Number(v))
		case float64:
			// Convert floats to integers for Mangle compatibility
			// (Mangle comparison operators don't support float types)
			// 0.0-1.0 range -> 0-100 scale, otherwise truncate to int
			if v >= 0.0 && v <= 1.0 {
				terms = append(terms, ast.Number(int64(v*100)))
			} else {
				terms = append(terms, ast.Number(int64(v)))
			}
		case bool:
			if v {
				terms = append(terms, ast.TrueConstant)
			} else {
				terms = append(terms, ast.FalseConstant)
			}
		default:
			terms = append(terms, ast.String(fmt.Sprintf("%v", v)))
		}
	}

	return ast.NewAtom(f.Predicate, terms...), nil
}

// =============================================================================
// KERNEL INTERFACE - Bridge to Mangle Logic Core
// =============================================================================

// KernelFact represents a fact that can be asserted to the kernel.
// This is the interface-friendly version of Fact for the kernel bridge.
type KernelFact struct {
	Predicate string
	Args      []interface{}
}

// ToFact converts a KernelFact to a Fact.
func (kf KernelFact) ToFact() Fact {
	return Fact{
		Predicate: kf.Predicate,
		Args:      kf.Args,
	}
}

// Kernel is a minimal fact-store interface (assert, query, retract).
// Nothing in this module implements or consumes it; internal/mangle.Engine
// does not have these methods.
type Kernel interface {
	// AssertFact adds a fact to the kernel's EDB
	AssertFact(fact KernelFact) error
	// QueryPredicate queries for facts matching a predicate
	QueryPredicate(predicate string) ([]KernelFact, error)
	// QueryBool returns true if any facts match the predicate
	QueryBool(predicate string) bool
	// RetractFact removes a fact from the kernel (matching predicate and first arg)
	RetractFact(fact KernelFact) error
}
