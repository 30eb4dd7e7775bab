package gfx

import (
	"sync"
	"testing"
)

func TestResourceKindString(t *testing.T) {
	tests := []struct {
		kind ResourceKind
		want string
	}{
		{ResourceBuffer, "Buffer"},
		{ResourceTexture, "Texture"},
		{ResourcePipeline, "Pipeline"},
		{ResourceRenderTexture, "RenderTexture"},
		{ResourceKind(9), "ResourceKind(9)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ResourceKind(%d).String() = %q, want %q", uint8(tt.kind), got, tt.want)
		}
	}
}

func TestResourceEquality(t *testing.T) {
	if BufferResource(7) != BufferResource(7) {
		t.Error("Buffer(7) != Buffer(7)")
	}
	if BufferResource(7) == TextureResource(7) {
		t.Error("Buffer(7) == Texture(7), want kinds to differ")
	}
	if got := BufferResource(7).String(); got != "Buffer(7)" {
		t.Errorf("String() = %q, want %q", got, "Buffer(7)")
	}
}

func TestCleanerAddIsIdempotent(t *testing.T) {
	c := NewResourceCleaner()
	c.Add(BufferResource(3))
	c.Add(BufferResource(3))
	if got := c.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
	if !c.Contains(BufferResource(3)) {
		t.Error("Contains(Buffer(3)) = false")
	}
	if c.Contains(TextureResource(3)) {
		t.Error("Contains(Texture(3)) = true")
	}
}

func TestCleanerReset(t *testing.T) {
	c := NewResourceCleaner()
	for id := uint64(1); id <= 5; id++ {
		c.Add(BufferResource(id))
	}
	if got := c.Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5", got)
	}
	c.Reset()
	if got := c.Len(); got != 0 {
		t.Errorf("Len() after Reset = %d, want 0", got)
	}
}

func TestCleanerPendingSorted(t *testing.T) {
	c := NewResourceCleaner()
	c.Add(TextureResource(2))
	c.Add(BufferResource(9))
	c.Add(BufferResource(1))
	c.Add(PipelineResource(4))

	got := c.Pending()
	want := []Resource{BufferResource(1), BufferResource(9), TextureResource(2), PipelineResource(4)}
	if len(got) != len(want) {
		t.Fatalf("Pending() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Pending()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if c.Len() != 4 {
		t.Errorf("Pending() modified the set: Len() = %d", c.Len())
	}
}

func TestCleanerDrain(t *testing.T) {
	c := NewResourceCleaner()
	if got := c.Drain(); got != nil {
		t.Errorf("Drain() on empty cleaner = %v, want nil", got)
	}
	c.Add(BufferResource(2))
	c.Add(BufferResource(1))

	got := c.Drain()
	if len(got) != 2 || got[0] != BufferResource(1) || got[1] != BufferResource(2) {
		t.Errorf("Drain() = %v, want [Buffer(1) Buffer(2)]", got)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after Drain = %d, want 0", c.Len())
	}

	// The set is usable after a drain.
	c.Add(BufferResource(1))
	if c.Len() != 1 {
		t.Errorf("Len() after re-Add = %d, want 1", c.Len())
	}
}

func TestCleanerConcurrentAddDrain(t *testing.T) {
	c := NewResourceCleaner()
	const producers, perProducer = 8, 200

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				c.Add(BufferResource(uint64(p*perProducer + i + 1)))
			}
		}()
	}

	seen := make(map[Resource]int)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for finished := false; !finished; {
		select {
		case <-done:
			finished = true
		default:
		}
		for _, r := range c.Drain() {
			seen[r]++
		}
	}
	for _, r := range c.Drain() {
		seen[r]++
	}

	if len(seen) != producers*perProducer {
		t.Errorf("drained %d distinct tags, want %d", len(seen), producers*perProducer)
	}
	for r, n := range seen {
		if n != 1 {
			t.Errorf("%v drained %d times, want 1", r, n)
		}
	}
}
