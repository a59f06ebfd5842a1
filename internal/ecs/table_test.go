package ecs

import "testing"

func TestTableAddGetSet(t *testing.T) {
	s := NewStore()
	table := NewTable[Transform](s, TransformMask)

	e := s.CreateEntity()
	table.Add(e)
	if !s.HasComponent(e, TransformMask) {
		t.Fatal("Add should set the presence bit on the shared store")
	}

	table.Set(e, Transform{Position: Vec2{X: 1, Y: 2}, Rotation: 90})
	got := table.Get(e)
	if got.Position.X != 1 || got.Position.Y != 2 || got.Rotation != 90 {
		t.Fatalf("unexpected value after Set: %+v", got)
	}
}

func TestTableCopyAll(t *testing.T) {
	s := NewStore()
	src := NewTable[Transform](s, TransformMask)
	dst := NewTable[Transform](s, TransformMask)

	// Each handle gets its component before the next CreateEntity, since a
	// handle with no component bits is still free and would be reused.
	e1 := s.CreateEntity()
	src.Add(e1)
	e2 := s.CreateEntity()
	src.Add(e2)
	src.Set(e1, Transform{Position: Vec2{X: 5, Y: 6}})
	src.Set(e2, Transform{Position: Vec2{X: 7, Y: 8}})

	dst.CopyAll(src)

	if got := dst.Get(e1); got.Position.X != 5 || got.Position.Y != 6 {
		t.Fatalf("unexpected e1 after CopyAll: %+v", got)
	}
	if got := dst.Get(e2); got.Position.X != 7 || got.Position.Y != 8 {
		t.Fatalf("unexpected e2 after CopyAll: %+v", got)
	}

	// Mutating src afterward must not affect dst's already-copied data.
	src.Set(e1, Transform{Position: Vec2{X: 100, Y: 100}})
	if got := dst.Get(e1); got.Position.X == 100 {
		t.Fatal("CopyAll should not alias the source's backing array")
	}
}
