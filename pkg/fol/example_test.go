package fol

import (
	"context"
	"fmt"
)

// ExampleEngineManager_Prove proves a classic syllogism using the
// manager's automatic engine selection.
func ExampleEngineManager_Prove() {
	manager := NewEngineManager(nil)

	premises := []*Node{
		Forall(Var("x"), Implies(Pred("Man", Var("x")), Pred("Mortal", Var("x")))),
		Pred("Man", Const("socrates")),
	}
	goal := Pred("Mortal", Const("socrates"))

	result := manager.Prove(context.Background(), premises, goal, ModeAuto, DefaultProveOptions())
	fmt.Println(result.Success, result.Result)
	// Output:
	// true proved
}

// ExampleSessionManager shows the incremental assert/prove/retract cycle
// a long-lived client uses one session for.
func ExampleSessionManager() {
	sm := NewSessionManager(NewEngineManager(nil), nil)
	defer sm.Close()

	id, err := sm.Create(CreateOptions{})
	if err != nil {
		fmt.Println("create error:", err)
		return
	}

	_ = sm.Assert(id, "all x (Bird(x) -> CanFly(x))")
	_ = sm.Assert(id, "Bird(tweety)")

	before, _ := sm.Prove(context.Background(), id, "CanFly(tweety)", DefaultProveOptions())
	fmt.Println("before retract:", before.Success)

	_ = sm.Retract(id, "Bird(tweety)")
	after, _ := sm.Prove(context.Background(), id, "CanFly(tweety)", DefaultProveOptions())
	fmt.Println("after retract:", after.Success)

	// Output:
	// before retract: true
	// after retract: false
}

// ExampleModelFinder_FindModel searches for the smallest finite
// interpretation satisfying exists x (P(x)) and prints it in the
// package's canonical model format.
func ExampleModelFinder_FindModel() {
	finder := NewModelFinder(nil)
	formula, _ := Parse("exists x (P(x))")

	result := finder.FindModel(context.Background(), []*Node{formula}, DefaultModelOptions())
	if !result.Success {
		fmt.Println("no model found")
		return
	}
	fmt.Println(CanonicalModelString(result.Model))
	// Output:
	// Domain size: 1
	// Domain: {0}
	// Constants:
	// Functions:
	// Predicates:
	// P: {(0)}
}
