//go:build !darwin && !freebsd

package procargs

func newKernSysctl(p Platform) sysctlQuerier {
	return nil
}
