package match

import (
	"sync"
	"testing"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestContext_Empty(t *testing.T) {
	ctx := NewContext()
	assert.Nil(t, ctx.GetMatch())
	assert.Equal(t, -1, ctx.Tick())
	assert.Empty(t, ctx.LogAttrs())
}

func TestContext_SetMatchResetsTick(t *testing.T) {
	ctx := NewContext()
	ctx.SetMatch(&core.Match{ID: "a"})
	ctx.SetTick(7)
	assert.Equal(t, 7, ctx.Tick())

	attrs := ctx.LogAttrs()
	assert.Len(t, attrs, 2)
	assert.Equal(t, "a", attrs[0].Value.String())
	assert.Equal(t, int64(7), attrs[1].Value.Int64())

	ctx.SetMatch(&core.Match{ID: "b"})
	assert.Equal(t, -1, ctx.Tick())
	assert.Len(t, ctx.LogAttrs(), 1)
}

func TestContext_ThreadSafe(t *testing.T) {
	ctx := NewContext()
	ctx.SetMatch(&core.Match{ID: "m"})

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ctx.SetTick(i)
		}()
		go func() {
			defer wg.Done()
			_ = ctx.LogAttrs()
		}()
	}
	wg.Wait()
	assert.GreaterOrEqual(t, ctx.Tick(), 0)
}
