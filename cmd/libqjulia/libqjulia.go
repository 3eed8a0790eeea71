// Command libqjulia builds the grid computation as a C shared library:
//
//	go build -buildmode=c-shared -o libqjulia.so ./cmd/libqjulia
//
// qj_compute allocates the grid with the library's own allocator. The host must release it
// with qj_grid_free and nothing else, and must not read it afterwards.
package main

/*
#include <stdint.h>
#include <stdlib.h>

enum {
	QJ_OK = 0,
	QJ_INVALID_BOUNDS = 1,
	QJ_INVALID_DIMENSIONS = 2,
	QJ_INVALID_ITERATION_BOUND = 3,
	QJ_INVALID_PARAMETER = 4,
	QJ_UNKNOWN_EFFECT = 5,
	QJ_CANCELLED = 6,
	QJ_INTERNAL = 99
};
*/
import "C"

import (
	"github.com/willbeason/quantum-fractal/pkg/fractal"
	"unsafe"
)

// qj_compute fills *grid_out with height*width row-major counts and *elapsed_out with seconds.
// token is 0 or a value from qj_token_new. On any non-zero return *grid_out is left NULL.
//
//export qj_compute
func qj_compute(width, height C.int,
	xMin, xMax, yMin, yMax C.double,
	cReal, cImag C.double,
	maxIter C.int, hbar C.double,
	effect *C.char, token C.uintptr_t,
	gridOut **C.uint32_t, elapsedOut *C.double) C.int {
	if gridOut == nil {
		return C.QJ_INTERNAL
	}
	*gridOut = nil

	p := fractal.Params{
		Width:   int(width),
		Height:  int(height),
		XMin:    float64(xMin),
		XMax:    float64(xMax),
		YMin:    float64(yMin),
		YMax:    float64(yMax),
		CReal:   float64(cReal),
		CImag:   float64(cImag),
		MaxIter: int(maxIter),
		Hbar:    float64(hbar),
	}
	if effect != nil {
		p.Effect = C.GoString(effect)
	}

	grid, elapsed, status := compute(p, uintptr(token))
	if status != C.QJ_OK {
		return C.int(status)
	}

	*gridOut = (*C.uint32_t)(grid)
	if elapsedOut != nil {
		*elapsedOut = C.double(elapsed)
	}

	return C.QJ_OK
}

// compute runs p and copies the counts into memory from the C allocator. The pointer is
// nil unless the status is QJ_OK; a non-nil pointer must go to freeGrid.
func compute(p fractal.Params, token uintptr) (unsafe.Pointer, float64, int) {
	res, err := fractal.Compute(tokenContext(token), p)
	if err != nil {
		return nil, 0, int(statusCode(err))
	}
	defer res.Release()

	n := len(res.Grid.Cells)
	buf := C.malloc(C.size_t(n) * C.size_t(unsafe.Sizeof(C.uint32_t(0))))
	if buf == nil {
		return nil, 0, C.QJ_INTERNAL
	}
	copy(unsafe.Slice((*uint32)(buf), n), res.Grid.Cells)

	return buf, res.Elapsed.Seconds(), C.QJ_OK
}

func freeGrid(grid unsafe.Pointer) {
	C.free(grid)
}

// qj_grid_free releases a grid returned by qj_compute. NULL is ignored.
//
//export qj_grid_free
func qj_grid_free(grid *C.uint32_t) {
	freeGrid(unsafe.Pointer(grid))
}

// qj_token_new returns a cancellation token for qj_compute. Free it with qj_token_free.
//
//export qj_token_new
func qj_token_new() C.uintptr_t {
	return C.uintptr_t(newToken())
}

// qj_token_cancel makes every qj_compute using token stop and return QJ_CANCELLED.
// It is safe to call from any thread while a computation runs.
//
//export qj_token_cancel
func qj_token_cancel(token C.uintptr_t) {
	cancelTokenHandle(uintptr(token))
}

//export qj_token_free
func qj_token_free(token C.uintptr_t) {
	freeToken(uintptr(token))
}

// statusCode maps an error to the QJ_* status returned across the C boundary.
func statusCode(err error) C.int {
	switch fractal.KindOf(err) {
	case fractal.InvalidBounds:
		return C.QJ_INVALID_BOUNDS
	case fractal.InvalidDimensions:
		return C.QJ_INVALID_DIMENSIONS
	case fractal.InvalidIterationBound:
		return C.QJ_INVALID_ITERATION_BOUND
	case fractal.InvalidParameter:
		return C.QJ_INVALID_PARAMETER
	case fractal.UnknownEffect:
		return C.QJ_UNKNOWN_EFFECT
	case fractal.Cancelled:
		return C.QJ_CANCELLED
	default:
		return C.QJ_INTERNAL
	}
}

func main() {}
