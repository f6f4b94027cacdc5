package store

import (
	"reflect"
	"testing"
)

func TestGet_Unset(t *testing.T) {
	s := New()
	if v, ok := s.Get("canvas.scale"); ok {
		t.Errorf("Get(unset) = %v, true, want nil, false", v)
	}
}

func TestSet_CreatesIntermediateContainers(t *testing.T) {
	s := New()
	s.Set("canvas.viewport.scale", 2.0)

	v, ok := s.Get("canvas.viewport.scale")
	if !ok || v != 2.0 {
		t.Fatalf("Get = %v, %v, want 2, true", v, ok)
	}
	c, ok := s.Get("canvas.viewport")
	if !ok {
		t.Fatal("intermediate container missing")
	}
	if _, isMap := c.(map[string]any); !isMap {
		t.Errorf("intermediate = %T, want map[string]any", c)
	}
}

func TestSet_ReplacesScalarWithContainer(t *testing.T) {
	s := New()
	s.Set("user", "bob")
	s.Set("user.color", "#FF0000")
	if got := ValueOr(s, "user.color", ""); got != "#FF0000" {
		t.Errorf("user.color = %q, want #FF0000", got)
	}
}

func TestSet_NotifiesExactPathWithOldAndNew(t *testing.T) {
	s := New()
	s.Set("canvas.scale", 1.0)

	var got []Change
	s.Subscribe("canvas.scale", func(c Change) { got = append(got, c) })
	s.Set("canvas.scale", 1.5)

	if len(got) != 1 {
		t.Fatalf("notifications = %d, want 1", len(got))
	}
	if got[0].Value != 1.5 || got[0].Previous != 1.0 {
		t.Errorf("change = %+v, want value 1.5 previous 1", got[0])
	}
	if got[0].Ancestor() {
		t.Error("exact-path change reported as ancestor")
	}
}

func TestSet_NotifiesAncestorsWithRecomputedValue(t *testing.T) {
	s := New()
	var canvas, root []Change
	s.Subscribe("canvas", func(c Change) { canvas = append(canvas, c) })
	s.Subscribe("", func(c Change) { root = append(root, c) })

	s.Set("canvas.offsetX", 10.0)

	if len(canvas) != 1 || len(root) != 1 {
		t.Fatalf("canvas=%d root=%d notifications, want 1 each", len(canvas), len(root))
	}
	m, ok := canvas[0].Value.(map[string]any)
	if !ok || m["offsetX"] != 10.0 {
		t.Errorf("ancestor value = %v, want container holding offsetX=10", canvas[0].Value)
	}
	if canvas[0].Source != "canvas.offsetX" || !canvas[0].Ancestor() {
		t.Errorf("ancestor change = %+v, want source canvas.offsetX", canvas[0])
	}
}

func TestSet_GetReflectsValueInsideListener(t *testing.T) {
	s := New()
	var seen any
	s.Subscribe("connection.isConnected", func(Change) {
		seen, _ = s.Get("connection.isConnected")
	})
	s.Set("connection.isConnected", true)
	if seen != true {
		t.Errorf("Get inside listener = %v, want true", seen)
	}
}

func TestBatchUpdate_AppliesAllBeforeNotifying(t *testing.T) {
	s := New()
	var observed []any
	s.Subscribe("canvas.offsetX", func(Change) {
		y, _ := s.Get("canvas.offsetY")
		observed = append(observed, y)
	})

	s.BatchUpdate(map[string]any{"canvas.offsetX": 1.0, "canvas.offsetY": 2.0})

	if !reflect.DeepEqual(observed, []any{2.0}) {
		t.Errorf("offsetY seen from offsetX listener = %v, want [2]", observed)
	}
}

func TestBatchUpdate_NotifiesEachAncestorOnce(t *testing.T) {
	s := New()
	count := 0
	s.Subscribe("canvas", func(Change) { count++ })
	s.BatchUpdate(map[string]any{
		"canvas.offsetX": 1.0,
		"canvas.offsetY": 2.0,
		"canvas.scale":   3.0,
	})
	if count != 1 {
		t.Errorf("canvas notified %d times, want 1", count)
	}
}

func TestSubscribe_UnsubscribeIsIdempotent(t *testing.T) {
	s := New()
	calls := 0
	unsubscribe := s.Subscribe("user.selectedColor", func(Change) { calls++ })
	other := s.Subscribe("user.selectedColor", func(Change) { calls += 10 })

	unsubscribe()
	unsubscribe()
	s.Set("user.selectedColor", "#000000")

	if calls != 10 {
		t.Errorf("calls = %d, want 10 (only the remaining listener)", calls)
	}
	other()
	s.Set("user.selectedColor", "#FFFFFF")
	if calls != 10 {
		t.Errorf("calls after removing all = %d, want 10", calls)
	}
}

func TestSubscribe_SameCallbackTwiceFiresTwice(t *testing.T) {
	s := New()
	calls := 0
	fn := func(Change) { calls++ }
	u1 := s.Subscribe("a", fn)
	s.Subscribe("a", fn)
	s.Set("a", 1)
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	u1()
	s.Set("a", 2)
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestReentrantWrite_DeliveredAfterCurrentPass(t *testing.T) {
	s := New()
	var order []string
	s.Subscribe("user.cooldownTime", func(c Change) {
		order = append(order, "time")
		if c.Value == 0 {
			s.Set("user.isCooldown", false)
			if v, _ := s.Get("user.isCooldown"); v != false {
				t.Errorf("nested write not visible: %v", v)
			}
		}
	})
	s.Subscribe("user.cooldownTime", func(Change) { order = append(order, "time2") })
	s.Subscribe("user.isCooldown", func(Change) { order = append(order, "flag") })

	s.Set("user.cooldownTime", 0)

	want := []string{"time", "time2", "flag"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestReentrantWrite_RunawayIsBounded(t *testing.T) {
	s := New()
	calls := 0
	s.Subscribe("counter", func(c Change) {
		calls++
		s.Set("counter", c.Value.(int)+1)
	})
	s.Set("counter", 0)

	if calls != maxFlushRounds+1 {
		t.Errorf("calls = %d, want %d", calls, maxFlushRounds+1)
	}
}

func TestValue_TypeMismatch(t *testing.T) {
	s := New()
	s.Set("canvas.scale", "big")
	if _, ok := Value[float64](s, "canvas.scale"); ok {
		t.Error("Value[float64] on string = ok, want !ok")
	}
	if got := ValueOr(s, "canvas.scale", 1.0); got != 1.0 {
		t.Errorf("ValueOr = %v, want fallback 1", got)
	}
}

func TestAncestors(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"", nil},
		{"canvas", []string{""}},
		{"canvas.pixels", []string{"canvas", ""}},
		{"a.b.c", []string{"a.b", "a", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ancestors(tt.path); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ancestors(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestGet_ContainerIsLiveView(t *testing.T) {
	s := New()
	s.Set("canvas.scale", 1.0)

	v, _ := s.Get("canvas")
	canvas := v.(map[string]any)
	s.Set("canvas.offsetX", 5.0)

	if got := canvas["offsetX"]; got != 5.0 {
		t.Errorf("container offsetX = %v, want 5 through the live view", got)
	}
}
