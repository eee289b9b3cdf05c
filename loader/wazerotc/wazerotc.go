// Package wazerotc compiles and instantiates WebAssembly accelerator
// modules with the wazero runtime.
//
// One Toolchain owns one wazero runtime; every instance it produces shares
// that runtime and is released by Close.
package wazerotc

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"

	"github.com/gogpu/docaccel/loader"
)

// Toolchain implements loader.Toolchain for WebAssembly modules.
type Toolchain struct {
	runtime wazero.Runtime
}

// New creates a toolchain backed by a fresh wazero runtime.
func New(ctx context.Context) *Toolchain {
	return &Toolchain{runtime: wazero.NewRuntime(ctx)}
}

// Compile validates and compiles raw WebAssembly bytes.
func (t *Toolchain) Compile(ctx context.Context, data []byte) (loader.CompiledModule, error) {
	cm, err := t.runtime.CompileModule(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("wazerotc: %w", err)
	}
	return cm, nil
}

// Instantiate instantiates a compiled module and adapts its exported
// functions into the loader's export surface.
//
// Modules are instantiated anonymously (no registered name) so the same
// module, or two modules declaring the same name, can coexist in one
// runtime. Start functions are not run.
func (t *Toolchain) Instantiate(ctx context.Context, cm loader.CompiledModule) (loader.Instance, loader.Exports, error) {
	compiled, ok := cm.(wazero.CompiledModule)
	if !ok {
		return nil, nil, fmt.Errorf("wazerotc: not a wazero compiled module: %T", cm)
	}
	cfg := wazero.NewModuleConfig().WithName("").WithStartFunctions()
	mod, err := t.runtime.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("wazerotc: %w", err)
	}
	exports := make(loader.Exports)
	for name := range compiled.ExportedFunctions() {
		if fn := mod.ExportedFunction(name); fn != nil {
			exports[name] = fn
		}
	}
	return mod, exports, nil
}

// Close releases the runtime and every module instantiated through it.
func (t *Toolchain) Close(ctx context.Context) error {
	return t.runtime.Close(ctx)
}
