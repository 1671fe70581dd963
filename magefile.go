//go:build mage

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
// Usage: mage
var Default = Test

const exampleDir = "examples/browser-visibility"

// Build compiles and vets the module, native and wasm.
func Build() error {
	fmt.Println("Building...")
	if err := sh.RunV("go", "build", "./..."); err != nil {
		return err
	}
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}

	wasm := map[string]string{"GOOS": "js", "GOARCH": "wasm"}
	return sh.RunWithV(wasm, "go", "vet", "./host/...", "./"+exampleDir)
}

// Test runs all unit tests.
// Usage: mage test
func Test() error {
	fmt.Println("Running tests...")
	return sh.RunV("go", "test", "-race", "./...")
}

// TestWasm runs the browser host tests; needs go_js_wasm_exec (node) on PATH.
func TestWasm() error {
	fmt.Println("Running wasm tests...")
	wasm := map[string]string{"GOOS": "js", "GOARCH": "wasm"}
	return sh.RunWithV(wasm, "go", "test", "./host/...")
}

// Example builds the browser example and copies wasm_exec.js next to it.
// Serve examples/browser-visibility with any static file server afterwards.
func Example() error {
	fmt.Println("Building browser example...")
	wasm := map[string]string{"GOOS": "js", "GOARCH": "wasm"}
	out := filepath.Join(exampleDir, "main.wasm")
	if err := sh.RunWithV(wasm, "go", "build", "-o", out, "./"+exampleDir); err != nil {
		return err
	}

	support := filepath.Join(runtime.GOROOT(), "lib", "wasm", "wasm_exec.js")
	if _, err := os.Stat(support); err != nil {
		// older toolchains keep it under misc/
		support = filepath.Join(runtime.GOROOT(), "misc", "wasm", "wasm_exec.js")
	}
	return sh.Copy(filepath.Join(exampleDir, "wasm_exec.js"), support)
}

// Clean removes build artifacts.
// Usage: mage clean
func Clean() error {
	fmt.Println("Cleaning...")
	for _, f := range []string{"main.wasm", "wasm_exec.js"} {
		if err := sh.Rm(filepath.Join(exampleDir, f)); err != nil {
			return err
		}
	}
	return nil
}

// Fmt runs go fmt on the module.
func Fmt() error {
	fmt.Println("Formatting...")
	return sh.RunV("go", "fmt", "./...")
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println("Tidying go.mod...")
	return sh.RunV("go", "mod", "tidy")
}

// All runs formatting, tidy, build and tests (good for local pre-push).
func All() {
	mg.SerialDeps(Fmt, Tidy, Build, Test)
}

// CI is a stricter pipeline entrypoint; logs failure early.
func CI() {
	for _, step := range []func() error{Fmt, Tidy, Build, Test} {
		if err := step(); err != nil {
			log.Fatalf("CI failed: %v", err)
		}
	}
}
