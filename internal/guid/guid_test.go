package guid

import "testing"

func TestStaticDeterministic(t *testing.T) {
	a := Static("category.cpu")
	b := Static("category.cpu")
	if a != b {
		t.Errorf("Static(%q) not deterministic: %d != %d", "category.cpu", a, b)
	}

	c := Static("category.gpu")
	if a == c {
		t.Errorf("Static() collided for distinct names: %d", a)
	}
}

func TestDynamicUnique(t *testing.T) {
	ResetGenerator()

	seen := make(map[Guid]bool, 1000)
	for i := 0; i < 1000; i++ {
		g := NewDynamic()
		if seen[g] {
			t.Fatalf("NewDynamic produced duplicate guid %d at iteration %d", g, i)
		}
		seen[g] = true
	}
}

func TestResetGeneratorStartsFresh(t *testing.T) {
	ResetGenerator()
	first := NewDynamic()

	ResetGenerator()
	afterReset := NewDynamic()

	// Not required to differ (salt is random either way); this only
	// checks that each fresh generator's first guid is non-zero.
	if first == 0 || afterReset == 0 {
		t.Error("NewDynamic should not return the zero guid")
	}
}
