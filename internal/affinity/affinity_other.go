//go:build !linux

package affinity

func Available() ([]int, error) {
	return nil, ErrUnsupported
}

func Pin(core int) error {
	return ErrUnsupported
}
