//go:build windows

package resolver

import (
	"os/exec"
	"regexp"
)

var nslookupServer = regexp.MustCompile(`Address:\s+([^\s]+)`)

// SystemNameServers returns the default name server reported by nslookup.
func SystemNameServers() []string {
	out, err := exec.Command("nslookup").Output()
	if err != nil {
		return nil
	}
	matches := nslookupServer.FindStringSubmatch(string(out))
	if len(matches) != 2 {
		return nil
	}
	return []string{matches[1]}
}
