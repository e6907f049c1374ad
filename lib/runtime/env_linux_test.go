//go:build linux

package runtime

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseContainerID(t *testing.T) {
	testcases := []struct {
		name     string
		cgroup   string
		expected string
	}{
		{
			name:     "containerd",
			cgroup:   "0::/kubepods.slice/kubepods-besteffort.slice/kubepods-besteffort-pode6ac4a8d_1076_453e_9ddb_3976520e3178.slice/cri-containerd-19cd7a809d879d9c855bb93e4d399efe795a769ac856faaa5256cdd8387fe4b1.scope",
			expected: "19cd7a809d879d9c855bb93e4d399efe795a769ac856faaa5256cdd8387fe4b1",
		},
		{
			name:     "docker",
			cgroup:   "12:memory:/docker/3e4f4c4bb9d3b7b0f7e0fd3c1c3b0e4c7d7e0f7a4c6f3b2a1e0d9c8b7a6f5e4d\n",
			expected: "3e4f4c4bb9d3b7b0f7e0fd3c1c3b0e4c7d7e0f7a4c6f3b2a1e0d9c8b7a6f5e4d",
		},
		{
			name:     "ecs task",
			cgroup:   "1:name=systemd:/ecs/0123456789abcdef0123456789abcdef-1234567890",
			expected: "0123456789abcdef0123456789abcdef-1234567890",
		},
		{
			name:     "host",
			cgroup:   "0::/user.slice/user-1000.slice/session-2.scope",
			expected: "",
		},
		{
			name:     "garbage",
			cgroup:   "not a cgroup line",
			expected: "",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, parseContainerID(strings.NewReader(tc.cgroup)))
		})
	}
}

func TestDetectEnv(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dev", "block"), 0o755))
	env := detectEnv(root)
	require.False(t, env.Containerized())

	require.NoError(t, os.WriteFile(filepath.Join(root, dockerEnvPath), nil, 0o644))
	sa := filepath.Join(root, kubernetesServiceAccountPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(sa), 0o755))
	require.NoError(t, os.WriteFile(sa, []byte("default"), 0o644))
	cg := filepath.Join(root, procSelfCgroupPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(cg), 0o755))
	require.NoError(t, os.WriteFile(cg, []byte("0::/docker/"+strings.Repeat("ab", 32)+"\n"), 0o644))

	env = detectEnv(root)
	require.True(t, env.Docker)
	require.True(t, env.Kubernetes)
	require.Equal(t, strings.Repeat("ab", 32), env.ContainerID)
	require.True(t, env.Containerized())

	t.Logf("current host env: %+v", DetectEnv())
}
