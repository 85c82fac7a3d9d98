package scene

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// evalScriptEasing evaluates a single Lua expression per tick with `state`
// bound as a global number, returning the expression's numeric result.
//
// Grounded on internal/lua/engine.go's sandboxed VM construction
// (SkipOpenLibs, selective stdlib, goroutine+timeout execution), shrunk
// from a whole hot-reloadable scripting engine down to one bounded
// expression evaluation: no file watching, no persistent VM, no injected
// host API table — just `state` in, a number out, on every tick.
const scriptTimeout = 2 * time.Millisecond

func evalScriptEasing(body string, state float64) (result float64, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("script easing panicked: %v", r)
			}
		}()
		result, err = runScriptOnce(body, state)
	}()

	select {
	case <-done:
		return result, err
	case <-ctx.Done():
		return 0, fmt.Errorf("script easing timed out after %s", scriptTimeout)
	}
}

func runScriptOnce(body string, state float64) (float64, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:        true,
		CallStackSize:       32,
		RegistrySize:        256,
		RegistryMaxSize:     1024,
		RegistryGrowStep:    32,
		MinimizeStackMemory: true,
	})
	defer L.Close()

	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	L.SetGlobal("state", lua.LNumber(state))

	fn, err := L.LoadString("return " + body)
	if err != nil {
		return 0, fmt.Errorf("compile: %w", err)
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return 0, fmt.Errorf("eval: %w", err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	num, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("script did not return a number, got %s", ret.Type())
	}
	return float64(num), nil
}
