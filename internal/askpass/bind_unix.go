//go:build !windows

package askpass

import (
	"net"
	"path/filepath"
)

// bind listens on a Unix domain socket at dir/askpass.sock and reports its
// own address in the form the ssh process factory writes into
// model.Askpass.Socket: the raw filesystem path.
func bind(dir string) (net.Listener, string, error) {
	path := filepath.Join(dir, "askpass.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, "", err
	}
	return ln, path, nil
}
