//go:build libfuzzer

// Command libfuzzer exports the C-ABI entry points an OSS-Fuzz/libFuzzer
// driver expects (spec.md §6's external fuzzer contract), forwarding to
// the pure-Go harness package. Built only with -tags libfuzzer, as a
// c-shared buildmode target, so the normal go build/go test path never
// links cgo or requires a C toolchain.
package main

/*
#include <stddef.h>
#include <stdint.h>
*/
import "C"

import (
	"os"
	"unsafe"

	"github.com/counter-optimization/cio-go/harness"
)

//export LLVMFuzzerInitialize
func LLVMFuzzerInitialize(argc *C.int, argv ***C.char) C.int {
	return C.int(harness.Initialize(os.Args[1:]))
}

//export LLVMFuzzerTestOneInput
func LLVMFuzzerTestOneInput(data *C.uint8_t, size C.size_t) C.int {
	if size == 0 {
		return C.int(harness.TestOneInput(nil))
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(data)), int(size))
	return C.int(harness.TestOneInput(buf))
}

// LLVMFuzzerCleanup is not part of the standard libFuzzer ABI contract,
// but several OSS-Fuzz harness templates call an exported teardown hook
// by this name before process exit; wiring it here lets this binary flush
// timing-mode output under those harnesses without relying on os.Exit
// hooks Go does not provide.
//
//export LLVMFuzzerCleanup
func LLVMFuzzerCleanup() {
	_ = harness.Close()
}

func main() {}
