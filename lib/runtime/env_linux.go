//go:build linux

package runtime

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
)

// 1. '/.dockerenv' exists in docker containers, but not reliably.
// 2. A container has no '/dev/block' devices by default.
// 3. Kubernetes mounts the service account namespace file.
const (
	dockerEnvPath                = ".dockerenv"                                             // unstable
	dockerBlockPath              = "dev/block"                                              // stable
	kubernetesServiceAccountPath = "var/run/secrets/kubernetes.io/serviceaccount/namespace" // stable
	procSelfCgroupPath           = "proc/self/cgroup"
)

func detectEnv(root string) Env {
	env := Env{
		Kubernetes: isNonEmptyFile(filepath.Join(root, kubernetesServiceAccountPath)),
	}
	if stat, err := os.Stat(filepath.Join(root, dockerEnvPath)); err == nil {
		env.Docker = !stat.IsDir()
	} else if _, err = os.Stat(filepath.Join(root, dockerBlockPath)); os.IsNotExist(err) {
		env.Docker = true
	}
	if f, err := os.Open(filepath.Join(root, procSelfCgroupPath)); err == nil {
		env.ContainerID = parseContainerID(f)
		_ = f.Close()
	}
	return env
}

func isNonEmptyFile(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && !stat.IsDir() && stat.Size() > 0
}

const (
	uuidSource      = "[0-9a-f]{8}[-_][0-9a-f]{4}[-_][0-9a-f]{4}[-_][0-9a-f]{4}[-_][0-9a-f]{12}|[0-9a-f]{8}(?:-[0-9a-f]{4}){4}$"
	containerSource = "[0-9a-f]{64}"
	taskSource      = "[0-9a-f]{32}-\\d+"
)

var (
	// /proc/self/cgroup line example:
	// 0::/kubepods.slice/kubepods-besteffort.slice/kubepods-besteffort-pode6ac4a8d_1076_453e_9ddb_3976520e3178.slice/cri-containerd-19cd7a809d879d9c855bb93e4d399efe795a769ac856faaa5256cdd8387fe4b1.scope
	procSelfCgroupLineRegex = regexp.MustCompile(`^\d+:[^:]*:(.+)$`)
	containerIDRegex        = regexp.MustCompile(fmt.Sprintf(`(%s|%s|%s)(?:.scope)?$`, uuidSource, containerSource, taskSource))
)

func parseContainerID(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		path := procSelfCgroupLineRegex.FindStringSubmatch(scanner.Text())
		if len(path) != 2 {
			continue
		}
		if parts := containerIDRegex.FindStringSubmatch(path[1]); len(parts) == 2 {
			return parts[1]
		}
	}
	return ""
}
