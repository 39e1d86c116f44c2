package display

import "testing"

func TestHeadless_WaitKey(t *testing.T) {
	d := NewHeadless(-1, 'c', 27)

	want := []int{-1, 'c', 27, -1, -1}
	for i, w := range want {
		if got := d.WaitKey(1); got != w {
			t.Errorf("poll %d: WaitKey() = %d, want %d", i, got, w)
		}
	}
}

func TestHeadless_ShowAndClose(t *testing.T) {
	d := NewHeadless()

	d.Show(nil)
	d.Show(nil)
	if d.Shown() != 2 {
		t.Errorf("Shown() = %d, want 2", d.Shown())
	}

	if d.Closed() {
		t.Error("display should not be closed yet")
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !d.Closed() {
		t.Error("display should be closed")
	}
}

func TestKeyAt(t *testing.T) {
	keys := KeyAt(3, 'c')

	if len(keys) != 4 {
		t.Fatalf("len = %d, want 4", len(keys))
	}
	for i := 0; i < 3; i++ {
		if keys[i] != -1 {
			t.Errorf("keys[%d] = %d, want -1", i, keys[i])
		}
	}
	if keys[3] != 'c' {
		t.Errorf("keys[3] = %d, want 'c'", keys[3])
	}
}

func TestInterfaces(t *testing.T) {
	var _ Display = (*Window)(nil)
	var _ Display = (*Headless)(nil)
}
