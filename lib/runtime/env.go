package runtime

// Env describes the host of the process. Inside a container the CPU
// quota, not the host core count, bounds GOMAXPROCS.
type Env struct {
	Docker      bool
	Kubernetes  bool
	ContainerID string
}

func (env Env) Containerized() bool {
	return env.Docker || env.Kubernetes || env.ContainerID != ""
}

// DetectEnv inspects the current host.
func DetectEnv() Env {
	return detectEnv("/")
}
