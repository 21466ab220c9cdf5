package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestFIFOEviction(t *testing.T) {
	c := NewFIFO[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)
	// reading does not refresh
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}
	c.Put("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Error("expected oldest entry to be evicted")
	}
	for k, want := range map[string]int{"b": 2, "c": 3} {
		if v, ok := c.Get(k); !ok || v != want {
			t.Errorf("Get(%s) = %v, %v, want %v", k, v, ok, want)
		}
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestFIFOReplaceKeepsPosition(t *testing.T) {
	c := NewFIFO[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10)
	c.Put("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Error("replaced entry should still be the oldest")
	}
	if v, _ := c.Get("b"); v != 2 {
		t.Errorf("Get(b) = %d, want 2", v)
	}
}

func TestFIFODeleteAndClear(t *testing.T) {
	c := NewFIFO[uint64, string](0)
	if c.Capacity() != DefaultCapacity {
		t.Fatalf("Capacity() = %d, want %d", c.Capacity(), DefaultCapacity)
	}

	c.Put(Key("x"), "x")
	c.Put(Key("y"), "y")
	c.Delete(Key("x"))
	if _, ok := c.Get(Key("x")); ok {
		t.Error("expected deleted entry to be gone")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	c.Put(Key("z"), "z")
	if v, ok := c.Get(Key("z")); !ok || v != "z" {
		t.Errorf("cache unusable after Clear: %q, %v", v, ok)
	}
}

func TestFIFOConcurrent(t *testing.T) {
	c := NewFIFO[int, int](16)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				c.Put(g*1000+i, i)
				c.Get(i)
			}
		}()
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}

func TestKey(t *testing.T) {
	if Key("a{}") != Key("a{}") {
		t.Error("Key is not stable")
	}
	seen := make(map[uint64]string)
	for i := range 1000 {
		s := fmt.Sprintf("p { color: #%06x; }", i)
		k := Key(s)
		if prev, ok := seen[k]; ok {
			t.Fatalf("collision between %q and %q", prev, s)
		}
		seen[k] = s
	}
}
