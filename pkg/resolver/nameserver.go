//go:build !(unix || windows)

package resolver

// SystemNameServers returns name servers configured on the host, it is not supported on this platform.
func SystemNameServers() []string {
	return nil
}
