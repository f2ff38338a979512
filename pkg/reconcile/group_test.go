package reconcile_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/pipeview/pkg/reconcile"
)

type countingCanceler struct {
	calls atomic.Int32
}

func (c *countingCanceler) Cancel() {
	c.calls.Add(1)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "stages", reconcile.Key("stages"))
	assert.Equal(t, "promotions/demo/dev", reconcile.Key("promotions", "demo", "dev"))
}

func TestGroup_ReplaceCancelsPrevious(t *testing.T) {
	g := reconcile.NewGroup()
	first, second := &countingCanceler{}, &countingCanceler{}

	g.Replace("promotions/demo/dev", first)
	g.Replace("promotions/demo/dev", second)

	assert.Equal(t, int32(1), first.calls.Load())
	assert.Equal(t, int32(0), second.calls.Load())
	assert.Equal(t, 1, g.Len())
}

func TestGroup_Cancel(t *testing.T) {
	g := reconcile.NewGroup()
	w := &countingCanceler{}
	g.Replace("stages/demo", w)

	g.Cancel("stages/demo")
	g.Cancel("stages/demo")
	g.Cancel("never-registered")

	assert.Equal(t, int32(1), w.calls.Load())
	assert.Equal(t, 0, g.Len())
}

func TestGroup_CancelAll(t *testing.T) {
	g := reconcile.NewGroup()
	a, b := &countingCanceler{}, &countingCanceler{}
	g.Replace("stages/demo", a)
	g.Replace("warehouses/demo", b)

	g.CancelAll()

	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, int32(1), b.calls.Load())
	assert.Equal(t, 0, g.Len())
}
