//go:build !linux

package runtime

func detectEnv(string) Env { return Env{} }
