package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/gomarket/internal/pkg/goroutine.(*Manager).Go.func1.1()
	/src/gomarket/internal/pkg/goroutine/goroutine.go:72 +0x8f
panic({0x1, 0x2})
	/usr/local/go/src/runtime/panic.go:785 +0x132
github.com/shandysiswandi/gomarket/internal/identity/usecase.(*Usecase).OTPVerify()
	/src/gomarket/internal/identity/usecase/otp_verify.go:40
`)

	assert.Equal(t, []string{
		"internal/pkg/goroutine/goroutine.go:72",
		"internal/identity/usecase/otp_verify.go:40",
	}, InternalPaths(stack))
}
