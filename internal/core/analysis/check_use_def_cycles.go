package analysis

import (
	"fmt"
	"strings"

	"github.com/fpp-community/fppsema/internal/core/ast"
	"github.com/fpp-community/fppsema/internal/core/semantics/symbol"
)

// CheckUseDefCycles walks every declaration that can sit on a use-def cycle
// (spec.md §4.4: alias types, arrays, constants, enums, enum constants,
// interfaces, structs, topologies) and follows each of its already-resolved
// uses, via UseDefMap, into the symbol it names. A symbol reached while
// still on the current DFS path is a cycle. CheckUses failures (a use with
// no UseDefMap entry) are silently skipped, matching spec.md §7's policy of
// never compounding an earlier error into a second diagnostic.
//
// This pass must run, and must Break the walk on a confirmed cycle, before
// CheckTypeUses/EvalConstantExprs/FinalizeTypeDefs: those passes recurse
// through the same use-def edges assuming the graph is acyclic, and would
// recurse forever on a cycle this pass didn't stop first.
func CheckUseDefCycles(a *Analysis) {
	c := &cycleChecker{a: a}
	for _, path := range a.FileOrder {
		c.checkMembers(a.Files[path].Members)
	}
}

type cycleChecker struct {
	a *Analysis
	// path is the current DFS chain of symbols, used only to render the
	// cycle trail in the diagnostic.
	path []symbol.Symbol
}

func (c *cycleChecker) checkMembers(members []*ast.Member) {
	for _, m := range members {
		c.checkMember(m)
	}
}

func (c *cycleChecker) checkMember(m *ast.Member) {
	switch {
	case m.AliasType != nil:
		c.visitDef(c.a.SymbolOf[m.AliasType.GetNodeID()])
	case m.Array != nil:
		c.visitDef(c.a.SymbolOf[m.Array.GetNodeID()])
	case m.Struct != nil:
		c.visitDef(c.a.SymbolOf[m.Struct.GetNodeID()])
	case m.Enum != nil:
		c.visitDef(c.a.SymbolOf[m.Enum.GetNodeID()])
	case m.Constant != nil:
		c.visitDef(c.a.SymbolOf[m.Constant.GetNodeID()])
	case m.Interface != nil:
		c.visitDef(c.a.SymbolOf[m.Interface.GetNodeID()])
	case m.Topology != nil:
		c.visitDef(c.a.SymbolOf[m.Topology.GetNodeID()])
		c.checkMembers(m.Topology.Members)

	case m.Module != nil:
		c.checkMembers(m.Module.Members)
	case m.Component != nil:
		c.checkMembers(m.Component.Members)
	case m.StateMachine != nil:
		c.checkMembers(m.StateMachine.Members)
	case m.State != nil:
		c.checkMembers(m.State.Members)
	}
}

// visitDef is the cycle-bearing part of the walk: it pushes sym onto the
// DFS stack, walks its body for further uses, and pops it, reporting a
// cycle (and returning without recursing further down that branch) if sym
// is already on the stack.
func (c *cycleChecker) visitDef(sym symbol.Symbol) {
	if c.a.useDefStack[sym.ID] {
		c.reportCycle(sym)
		return
	}
	if c.a.useDefVisited[sym.ID] {
		return
	}

	c.a.useDefStack[sym.ID] = true
	c.path = append(c.path, sym)

	c.walkDefBody(sym)

	c.path = c.path[:len(c.path)-1]
	delete(c.a.useDefStack, sym.ID)
	c.a.useDefVisited[sym.ID] = true
}

// walkDefBody visits every use reachable directly from sym's own
// declaration (not descending into nested scope-owning declarations, which
// checkMember already reaches independently).
func (c *cycleChecker) walkDefBody(sym symbol.Symbol) {
	switch node := sym.Node.(type) {
	case *ast.AliasTypeDecl:
		c.followTypeName(node.Target)
	case *ast.ArrayDecl:
		c.followTypeName(node.Elt)
		c.followExpr(node.Size)
		c.followExpr(node.Default)
	case *ast.StructDecl:
		for _, m := range node.Members {
			c.followTypeName(m.Type)
			c.followExpr(m.Size)
		}
		c.followExpr(node.Default)
	case *ast.EnumDecl:
		c.followTypeName(node.RepType)
		for _, ec := range node.Members {
			c.visitDef(c.a.SymbolOf[ec.GetNodeID()])
		}
	case *ast.EnumConstantDecl:
		c.followExpr(node.Value)
	case *ast.ConstantDecl:
		c.followExpr(node.Value)
	case *ast.InterfaceDecl:
		for _, m := range node.Members {
			if m.Port != nil {
				c.followTypeName(m.Port.Type)
			}
		}
	case *ast.TopologyDecl:
		for _, m := range node.Members {
			if m.ComponentInstance != nil {
				c.followUse(m.ComponentInstance.ComponentName.GetNodeID())
			}
		}
	}
}

func (c *cycleChecker) followTypeName(tn *ast.TypeName) {
	if tn == nil {
		return
	}
	if tn.Ref != nil {
		c.followUse(tn.Ref.GetNodeID())
	}
	c.followExpr(tn.StringSz)
}

func (c *cycleChecker) followExpr(e *ast.Expr) {
	if e == nil {
		return
	}
	c.followTerm(e.Left)
	for _, t := range e.Rest {
		c.followTerm(t)
	}
}

func (c *cycleChecker) followTerm(t *ast.Term) {
	if t == nil {
		return
	}
	c.followUnary(t.Left)
	for _, u := range t.Rest {
		c.followUnary(u)
	}
}

func (c *cycleChecker) followUnary(u *ast.Unary) {
	if u == nil {
		return
	}
	c.followPostfix(u.Value)
}

func (c *cycleChecker) followPostfix(p *ast.Postfix) {
	if p == nil {
		return
	}
	c.followPrimary(p.Base)
}

func (c *cycleChecker) followPrimary(p *ast.Primary) {
	if p == nil {
		return
	}
	switch {
	case p.Ref != nil:
		c.followUse(p.Ref.GetNodeID())
	case p.Array != nil:
		for _, el := range p.Array.Elements {
			c.followExpr(el)
		}
	case p.Struct != nil:
		for _, mem := range p.Struct.Members {
			c.followExpr(mem.Value)
		}
	case p.Paren != nil:
		c.followExpr(p.Paren)
	}
}

// followUse resolves nodeID through UseDefMap (populated by CheckUses) and
// recurses into the target symbol only if its kind can itself sit on a
// cycle; Component/Module/Port/ComponentInstance/StateMachine targets are
// dead ends for this walk.
func (c *cycleChecker) followUse(nodeID ast.NodeID) {
	defID, ok := c.a.UseDefMap[nodeID]
	if !ok {
		return
	}
	sym := c.a.SymbolOf[defID]
	if !cycleParticipant(sym.Kind) {
		return
	}
	c.visitDef(sym)
}

func cycleParticipant(k symbol.Kind) bool {
	switch k {
	case symbol.AliasType, symbol.Array, symbol.Constant, symbol.Enum,
		symbol.EnumConstant, symbol.Interface, symbol.Struct, symbol.Topology:
		return true
	default:
		return false
	}
}

func (c *cycleChecker) reportCycle(sym symbol.Symbol) {
	start := 0
	for i, s := range c.path {
		if s.ID == sym.ID {
			start = i
			break
		}
	}
	names := make([]string, 0, len(c.path)-start+1)
	for _, s := range c.path[start:] {
		names = append(names, s.Name)
	}
	names = append(names, sym.Name)

	pos, _ := positionsOf(sym.Node)
	msg := fmt.Sprintf("use-def cycle: %s", strings.Join(names, " -> "))
	c.a.Report(newDiagnostic(pos, CodeUseDefCycle, msg))
}
