package physics

import (
	"testing"

	"rollbackgame/internal/ecs"
)

func TestFixedUpdateIntegratesDynamicBodies(t *testing.T) {
	store := ecs.NewStore()
	sim := NewSimulator(store)

	e := store.CreateEntity()
	sim.AddBody(e, BoxBody{Position: ecs.Vec2{X: 0, Y: 0}, Velocity: ecs.Vec2{X: 2, Y: -1}, Extents: ecs.Vec2{X: 0.1, Y: 0.1}, Kind: Dynamic})

	sim.FixedUpdate(0.5)

	got := sim.Body(e)
	if got.Position.X != 1 || got.Position.Y != -0.5 {
		t.Fatalf("expected position (1, -0.5), got (%v, %v)", got.Position.X, got.Position.Y)
	}
}

func TestFixedUpdateIntegratesStaticBodiesTooWhenGivenVelocity(t *testing.T) {
	// Static bodies are expected to carry zero velocity at every tick
	// boundary (spec.md §3 invariant 2), but the integrate step itself
	// does not enforce that — it integrates every BOX_BODY alike.
	store := ecs.NewStore()
	sim := NewSimulator(store)

	e := store.CreateEntity()
	sim.AddBody(e, BoxBody{Position: ecs.Vec2{X: 3, Y: 4}, Velocity: ecs.Vec2{X: 10, Y: 10}, Extents: ecs.Vec2{X: 1, Y: 1}, Kind: Static})

	sim.FixedUpdate(1.0)

	got := sim.Body(e)
	if got.Position.X != 13 || got.Position.Y != 14 {
		t.Fatalf("expected static body to integrate its (non-conforming) velocity too, got %+v", got.Position)
	}
}

func TestFixedUpdateLeavesWellFormedStaticBodiesInPlace(t *testing.T) {
	store := ecs.NewStore()
	sim := NewSimulator(store)

	e := store.CreateEntity()
	sim.AddBody(e, BoxBody{Position: ecs.Vec2{X: 3, Y: 4}, Extents: ecs.Vec2{X: 1, Y: 1}, Kind: Static})

	sim.FixedUpdate(1.0)

	got := sim.Body(e)
	if got.Position.X != 3 || got.Position.Y != 4 {
		t.Fatalf("static body with zero velocity moved: %+v", got.Position)
	}
}

func TestResolveStaticVsDynamicFlipsBothOverlappingAxes(t *testing.T) {
	// Reaching resolveCollision at all requires both axes to already
	// overlap (pair detection's AABB test gates it), so the per-axis
	// epsilon test in resolveStaticAxis always finds both signed
	// distances negative — and therefore below config.CollisionEpsilon
	// — whenever a STATIC vs DYNAMIC pair resolves at all.
	store := ecs.NewStore()
	sim := NewSimulator(store)

	dyn := store.CreateEntity()
	sim.AddBody(dyn, BoxBody{
		Position: ecs.Vec2{X: 0.95, Y: 0},
		Velocity: ecs.Vec2{X: 1, Y: 1},
		Extents:  ecs.Vec2{X: 0.5, Y: 0.5},
		Kind:     Dynamic,
	})

	static := store.CreateEntity()
	sim.AddBody(static, BoxBody{
		Position: ecs.Vec2{X: 0, Y: 0},
		Extents:  ecs.Vec2{X: 0.5, Y: 0.5},
		Kind:     Static,
	})

	sim.FixedUpdate(0)

	got := sim.Body(dyn)
	if got.Velocity.X != -1 || got.Velocity.Y != -1 {
		t.Fatalf("expected both axes flipped to (-1, -1), got %+v", got.Velocity)
	}
}

func TestResolveDynamicVsDynamicSwapsLinearVelocities(t *testing.T) {
	store := ecs.NewStore()
	sim := NewSimulator(store)

	a := store.CreateEntity()
	sim.AddBody(a, BoxBody{
		Position: ecs.Vec2{X: 0, Y: 0},
		Velocity: ecs.Vec2{X: 2, Y: -3},
		Rotation: 15, AngularVelocity: 7,
		Extents: ecs.Vec2{X: 0.5, Y: 0.5},
		Kind:    Dynamic,
	})

	b := store.CreateEntity()
	sim.AddBody(b, BoxBody{
		Position: ecs.Vec2{X: 0.5, Y: 0},
		Velocity: ecs.Vec2{X: -1, Y: 4},
		Rotation: 200, AngularVelocity: -9,
		Extents: ecs.Vec2{X: 0.5, Y: 0.5},
		Kind:    Dynamic,
	})

	sim.FixedUpdate(0)

	gotA, gotB := sim.Body(a), sim.Body(b)
	if gotA.Velocity != (ecs.Vec2{X: -1, Y: 4}) {
		t.Fatalf("expected a's velocity swapped to b's (-1, 4), got %+v", gotA.Velocity)
	}
	if gotB.Velocity != (ecs.Vec2{X: 2, Y: -3}) {
		t.Fatalf("expected b's velocity swapped to a's (2, -3), got %+v", gotB.Velocity)
	}
	if gotA.AngularVelocity != 7 || gotB.AngularVelocity != -9 {
		t.Fatalf("expected angular velocities untouched, got a=%v b=%v", gotA.AngularVelocity, gotB.AngularVelocity)
	}
}

func TestNonOverlappingBodiesDoNotResolve(t *testing.T) {
	store := ecs.NewStore()
	sim := NewSimulator(store)

	a := store.CreateEntity()
	sim.AddBody(a, BoxBody{Position: ecs.Vec2{X: 0, Y: 0}, Velocity: ecs.Vec2{X: 1, Y: 1}, Extents: ecs.Vec2{X: 0.1, Y: 0.1}, Kind: Dynamic})

	b := store.CreateEntity()
	sim.AddBody(b, BoxBody{Position: ecs.Vec2{X: 10, Y: 10}, Extents: ecs.Vec2{X: 0.1, Y: 0.1}, Kind: Static})

	sim.FixedUpdate(0)

	got := sim.Body(a)
	if got.Velocity.X != 1 || got.Velocity.Y != 1 {
		t.Fatalf("expected velocity untouched, got %+v", got.Velocity)
	}
}

func TestTriggerListenerFiresOnOverlapEvenWithoutResolve(t *testing.T) {
	store := ecs.NewStore()
	sim := NewSimulator(store)

	var fired [][2]ecs.Entity
	sim.RegisterTriggerListener(func(a, b ecs.Entity) {
		fired = append(fired, [2]ecs.Entity{a, b})
	})

	a := store.CreateEntity()
	sim.AddBody(a, BoxBody{Position: ecs.Vec2{X: 0, Y: 0}, Extents: ecs.Vec2{X: 1, Y: 1}, Kind: Dynamic, IsTrigger: true})

	b := store.CreateEntity()
	sim.AddBody(b, BoxBody{Position: ecs.Vec2{X: 0.5, Y: 0}, Extents: ecs.Vec2{X: 1, Y: 1}, Kind: Static})

	sim.FixedUpdate(0)

	if len(fired) != 1 {
		t.Fatalf("expected exactly 1 trigger callback, got %d", len(fired))
	}
}

func TestCopyAllFromSnapshotsBothBodies(t *testing.T) {
	store := ecs.NewStore()
	confirmed := NewSimulator(store)
	current := NewSimulator(store)

	e := store.CreateEntity()
	confirmed.AddBody(e, BoxBody{Position: ecs.Vec2{X: 9, Y: 9}, Kind: Dynamic})
	current.AddBody(e, BoxBody{Position: ecs.Vec2{X: 0, Y: 0}, Kind: Dynamic})

	current.CopyAllFrom(confirmed)

	if got := current.Body(e); got.Position.X != 9 || got.Position.Y != 9 {
		t.Fatalf("expected current to match confirmed after CopyAllFrom, got %+v", got.Position)
	}
}
