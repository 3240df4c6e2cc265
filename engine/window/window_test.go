package window

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	for idx, tc := range []struct {
		v, lo, hi int
		want      int
	}{
		{v: 800, lo: 200, hi: 3840, want: 800},
		{v: 10, lo: 200, hi: 3840, want: 200},
		{v: 5000, lo: 200, hi: 3840, want: 3840},
		{v: 5000, lo: 0, hi: 0, want: 5000},
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			require.Equal(t, tc.want, clamp(tc.v, tc.lo, tc.hi))
		})
	}
}

func TestBuilderOptions(t *testing.T) {
	w := &engineWindow{}
	for _, opt := range []WindowBuilderOption{
		WithTitle("demo"),
		WithSize(1024, 768),
		WithMinWidth(320),
		WithMinHeight(240),
		WithMaxWidth(1920),
		WithMaxHeight(1080),
	} {
		opt(w)
	}
	require.Equal(t, "demo", w.title)
	width, height := w.Size()
	require.Equal(t, 1024, width)
	require.Equal(t, 768, height)
	require.Equal(t, 320, w.minWidth)
	require.Equal(t, 1080, w.maxHeight)
}

func TestUnopenedWindow(t *testing.T) {
	w := &engineWindow{}
	require.False(t, w.IsRunning())
	require.False(t, w.PollEvents())
	require.Nil(t, w.RequiredInstanceExtensions())
	require.Error(t, w.Close())
}
