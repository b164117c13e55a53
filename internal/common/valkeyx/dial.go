package valkeyx

import (
	"crypto/tls"
	"net"
	"time"
)

func unixDialer(timeout time.Duration) func(string, *net.Dialer, *tls.Config) (net.Conn, error) {
	return func(path string, dialer *net.Dialer, _ *tls.Config) (net.Conn, error) {
		d := *dialer
		if timeout > 0 {
			d.Timeout = timeout
		}
		return d.Dial("unix", path)
	}
}
