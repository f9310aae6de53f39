package core

import "testing"

func TestServerArenaCapacityMatchesSpawns(t *testing.T) {
	sa, err := NewServerArena("scrapyard")
	if err != nil {
		t.Fatalf("load arena: %v", err)
	}

	if sa.Capacity() != len(sa.Arena.Spawns) {
		t.Fatalf("capacity = %d, want one slot per spawn (%d)", sa.Capacity(), len(sa.Arena.Spawns))
	}
	if sa.Capacity() < 2 {
		t.Fatalf("a hosted arena needs at least two spawns, got %d", sa.Capacity())
	}
}

func TestNextSpawnRoundRobins(t *testing.T) {
	sa, err := NewServerArena("scrapyard")
	if err != nil {
		t.Fatalf("load arena: %v", err)
	}

	n := sa.Capacity()
	first := sa.NextSpawn()
	for i := 1; i < n; i++ {
		sa.NextSpawn()
	}
	wrapped := sa.NextSpawn()
	if wrapped != first {
		t.Fatalf("spawn rotation did not wrap: first %+v, after full cycle %+v", first, wrapped)
	}
}
