//go:build unix

package resolver

import (
	"bufio"
	"io"
	"os"
	"strings"
)

const resolvConfPath = "/etc/resolv.conf"

// SystemNameServers returns name servers the host resolver is configured with in /etc/resolv.conf,
// nil when the file cannot be read.
func SystemNameServers() []string {
	f, err := os.Open(resolvConfPath)
	if err != nil {
		return nil
	}
	defer func() {
		_ = f.Close()
	}()
	return parseResolvConf(f)
}

func parseResolvConf(r io.Reader) []string {
	var servers []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) > 0 && (line[0] == ';' || line[0] == '#') {
			// comment line, skip
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "nameserver" {
			servers = append(servers, fields[1])
		}
	}
	return servers
}
