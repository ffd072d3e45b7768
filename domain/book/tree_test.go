package book

import (
	"math/rand"
	"sort"
	"testing"
)

func TestTreeOrderedWalks(t *testing.T) {
	tr := newTree()
	prices := []Price{105, 99, 120, 100, 101, 98, 150, 97}
	for _, p := range prices {
		tr.upsert(p)
	}
	if tr.len() != len(prices) {
		t.Fatalf("size=%d want %d", tr.len(), len(prices))
	}

	sorted := append([]Price(nil), prices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var asc []Price
	tr.ascend(func(l *level) bool { asc = append(asc, l.price); return true })
	for i, p := range sorted {
		if asc[i] != p {
			t.Fatalf("ascend[%d]=%d want %d", i, asc[i], p)
		}
	}

	var desc []Price
	tr.descend(func(l *level) bool { desc = append(desc, l.price); return true })
	for i := range sorted {
		if desc[i] != sorted[len(sorted)-1-i] {
			t.Fatalf("descend[%d]=%d want %d", i, desc[i], sorted[len(sorted)-1-i])
		}
	}

	if tr.min().price != 97 || tr.max().price != 150 {
		t.Errorf("min/max = %d/%d, want 97/150", tr.min().price, tr.max().price)
	}
}

func TestTreeUpsertReturnsExistingLevel(t *testing.T) {
	tr := newTree()
	a := tr.upsert(100)
	b := tr.upsert(100)
	if a != b {
		t.Error("upsert created a duplicate level for the same price")
	}
	if tr.len() != 1 {
		t.Errorf("size=%d want 1", tr.len())
	}
}

func TestTreeRemove(t *testing.T) {
	tr := newTree()
	for _, p := range []Price{5, 3, 8, 1, 4} {
		tr.upsert(p)
	}
	if !tr.remove(3) {
		t.Fatal("remove(3) failed")
	}
	if tr.remove(3) {
		t.Fatal("remove(3) succeeded twice")
	}
	if tr.find(3) != nil {
		t.Error("removed price still findable")
	}
	if tr.len() != 4 {
		t.Errorf("size=%d want 4", tr.len())
	}
}

func TestTreeRandomizedChurn(t *testing.T) {
	tr := newTree()
	rng := rand.New(rand.NewSource(1))
	live := map[Price]bool{}

	for i := 0; i < 5000; i++ {
		p := Price(rng.Intn(500))
		if live[p] {
			tr.remove(p)
			delete(live, p)
		} else {
			tr.upsert(p)
			live[p] = true
		}
	}
	if tr.len() != len(live) {
		t.Fatalf("size=%d want %d", tr.len(), len(live))
	}

	var prev Price
	first := true
	count := 0
	tr.ascend(func(l *level) bool {
		if !first && l.price <= prev {
			t.Fatalf("ascend out of order: %d after %d", l.price, prev)
		}
		if !live[l.price] {
			t.Fatalf("tree holds removed price %d", l.price)
		}
		prev, first = l.price, false
		count++
		return true
	})
	if count != len(live) {
		t.Errorf("walked %d levels, want %d", count, len(live))
	}
}
