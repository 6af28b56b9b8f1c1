// Command heimdallplugin is the thin cgo export layer behind the linker
// plugin ABI. Built with `go build -buildmode=c-shared`, it exposes the
// dynamic symbols a hosting linker dlopen()s and calls directly; all of
// the actual logic lives in package plugin, which this file does
// nothing but route the single process-wide *plugin.State through. The
// host ABI has no user-data pointer, so the state record is the one
// piece of process-global mutable state.
package main

import "C"

import (
	"sync"

	"github.com/Heimdall-SBOM/heimdall-sub003/plugin"
)

var (
	stateMu sync.Mutex
	state   *plugin.State
)

func current() *plugin.State {
	stateMu.Lock()
	defer stateMu.Unlock()
	if state == nil {
		state = plugin.New()
	}
	return state
}

func boolToInt(ok bool) C.int {
	if ok {
		return 0
	}
	return -1
}

//export onload
func onload(_ uintptr) C.int {
	stateMu.Lock()
	state = plugin.New()
	stateMu.Unlock()
	return 0
}

//export heimdall_set_format
func heimdall_set_format(format *C.char) C.int {
	return boolToInt(current().SetFormat(C.GoString(format)))
}

//export heimdall_set_spdx_version
func heimdall_set_spdx_version(version *C.char) C.int {
	return boolToInt(current().SetSPDXVersion(C.GoString(version)))
}

//export heimdall_set_cyclonedx_version
func heimdall_set_cyclonedx_version(version *C.char) C.int {
	return boolToInt(current().SetCycloneDXVersion(C.GoString(version)))
}

//export heimdall_set_output_path
func heimdall_set_output_path(path *C.char) C.int {
	return boolToInt(current().SetOutputPath(C.GoString(path)))
}

//export heimdall_set_verbose
func heimdall_set_verbose(verbose C.int) {
	current().SetVerbose(verbose != 0)
}

//export heimdall_process_input_file
func heimdall_process_input_file(path *C.char) C.int {
	return boolToInt(current().ProcessInputFile(C.GoString(path)))
}

//export heimdall_process_library
func heimdall_process_library(path *C.char) C.int {
	return boolToInt(current().ProcessLibrary(C.GoString(path)))
}

//export heimdall_finalize
func heimdall_finalize() {
	current().Finalize()
}

func main() {}
