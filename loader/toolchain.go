package loader

import "context"

// CompiledModule is an opaque compiled-but-not-instantiated module produced
// by a Toolchain.
type CompiledModule any

// Instance is an opaque handle to an instantiated module.
type Instance any

// Exports is the callable surface an instantiated module exposes, keyed by
// export name.
type Exports map[string]any

// Toolchain compiles raw accelerator bytes and instantiates compiled
// modules. Compile and instantiate failures are distinguished only by
// message text, not by a separate error kind. See wazerotc for the
// WebAssembly implementation.
type Toolchain interface {
	Compile(ctx context.Context, data []byte) (CompiledModule, error)
	Instantiate(ctx context.Context, cm CompiledModule) (Instance, Exports, error)
}

// Module is a ready accelerator module.
//
// Modules are cached by identity: repeated loads of the same id return the
// same *Module, never a re-instantiated copy, until ClearCache.
type Module struct {
	ID       string
	Instance Instance
	Exports  Exports
}
