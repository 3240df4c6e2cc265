package device

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestNewError(t *testing.T) {
	for idx, tc := range []struct {
		res     vk.Result
		wantErr bool
	}{
		{res: vk.Success, wantErr: false},
		{res: vk.ErrorOutOfDeviceMemory, wantErr: true},
		{res: vk.ErrorInitializationFailed, wantErr: true},
	} {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			err := NewError("create render pass", tc.res)
			if !tc.wantErr {
				require.NoError(t, err)
				require.False(t, IsError(tc.res))
				return
			}
			require.Error(t, err)
			require.True(t, IsError(tc.res))
			require.True(t, errors.Is(err, ErrDevice))
			require.Contains(t, err.Error(), "create render pass")
			require.Contains(t, err.Error(), "TestNewError")
		})
	}
}
