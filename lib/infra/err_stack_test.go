package infra

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

func TestFrameFormat(t *testing.T) {
	testcases := []struct {
		Frame
		format string
		want   string
	}{
		{initPC, "%s", "err_stack_test.go"},
		{initPC, "%n", "init"},
		{Frame(0), "%s", "unknownFile"},
		{Frame(0), "%n", "unknownFunc"},
		{Frame(0), "%d", "0"},
	}
	for i, tc := range testcases {
		t.Run(fmt.Sprintf("frame-%d-%s", i, tc.format), func(tt *testing.T) {
			require.Equal(tt, tc.want, fmt.Sprintf(tc.format, tc.Frame))
		})
	}
}

func TestFrameMarshalText(t *testing.T) {
	text, err := Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(text))

	text, err = initPC.MarshalText()
	require.NoError(t, err)
	require.Contains(t, string(text), "err_stack_test.go")
}

func TestErrorStack(t *testing.T) {
	err := NewErrorStack("[rbtree] broken")
	require.Equal(t, "[rbtree] broken", err.Error())

	var es ErrorStack
	require.True(t, errors.As(err, &es))
	require.NotEmpty(t, es.Frames())
	require.Contains(t, fmt.Sprintf("%+v", err), "TestErrorStack")

	require.Nil(t, WrapErrorStack(nil))
	require.Nil(t, WrapErrorStackWithMessage(nil, "ignored"))

	cause := errors.New("disk full")
	wrapped := WrapErrorStackWithMessage(cause, "unable to write log")
	require.Equal(t, "unable to write log: disk full", wrapped.Error())
	require.ErrorIs(t, wrapped, cause)

	same := WrapErrorStack(wrapped)
	require.Same(t, wrapped, same)

	plain := WrapErrorStack(cause)
	require.Equal(t, "disk full", plain.Error())
	require.ErrorIs(t, plain, cause)
}

func TestErrorStack_MarshalLogObject(t *testing.T) {
	err := NewErrorStack("assertion")
	es := err.(ErrorStack)
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, es.MarshalLogObject(enc))
	require.Equal(t, "assertion", enc.Fields["error"])
	stack, ok := enc.Fields["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, stack)
	require.True(t, strings.Contains(fmt.Sprint(stack[0]), "TestErrorStack_MarshalLogObject"))
}
