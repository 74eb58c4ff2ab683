package rt

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("driver said no")
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"plain", cause, KindUnknown},
		{"unknown sentinel", ErrUnknown, KindUnknown},
		{"too large", ErrDimensionsTooLarge, KindConfiguration},
		{"mixed props", fmt.Errorf("%w: object 3", ErrMixedPropSize), KindConfiguration},
		{"not initialized", ErrNotInitialized, KindNotInitialized},
		{"build wrapped", fmt.Errorf("%w: %w", ErrProgramBuild, cause), KindSetup},
		{"alloc", ErrBufferAlloc, KindSetup},
		{"bind", ErrBindArguments, KindFrame},
		{"dispatch twice wrapped", fmt.Errorf("frame 9: %w", fmt.Errorf("%w: timeout", ErrDispatch)), KindFrame},
		{"read back", ErrReadBack, KindFrame},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrappedCauseSurvives(t *testing.T) {
	cause := errors.New("vkQueueSubmit failed")
	err := fmt.Errorf("%w: %w", ErrDispatch, cause)
	if !errors.Is(err, cause) || !errors.Is(err, ErrDispatch) {
		t.Errorf("wrapped error %v lost a link", err)
	}
}
