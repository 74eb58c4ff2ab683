//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/gogpu/naga"
	"github.com/gogpu/rt"
)

//go:embed shaders/raytrace.wgsl
var raytraceShaderSource string

var (
	kernelOnce  sync.Once
	kernelSPIRV []byte
	kernelErr   error
)

// compileKernel translates the WGSL kernel to SPIR-V once per process. The
// result is only used to validate the source before a device sees it.
func compileKernel() ([]byte, error) {
	kernelOnce.Do(func() {
		kernelSPIRV, kernelErr = naga.Compile(raytraceShaderSource)
		if kernelErr != nil {
			kernelErr = fmt.Errorf("%w: raytrace.wgsl: %w", rt.ErrProgramBuild, kernelErr)
		}
	})
	return kernelSPIRV, kernelErr
}
