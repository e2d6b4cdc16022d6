package remote

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/pkg/sshutil"
)

// ParseTarget parses "[user@]host[:port]" and fills the gaps from cfg.
//
// Precedence for the user is the spec's user, cfg.User, $USER, then "root".
// For the port it is the spec's port, cfg.Port, then 22. IPv6 literals
// take a port only when bracketed: "[::1]:2222".
func ParseTarget(hostSpec string, cfg Config) (sshutil.Target, error) {
	spec := strings.TrimSpace(hostSpec)
	if spec == "" {
		return sshutil.Target{}, errors.New(errors.ErrConfig,
			"No host given",
			"Pass a host like user@example.com or example.com:2222")
	}

	var t sshutil.Target

	rest := spec
	if at := strings.LastIndex(spec, "@"); at >= 0 {
		t.User = spec[:at]
		rest = spec[at+1:]
		if t.User == "" {
			return sshutil.Target{}, invalidTarget(hostSpec, "empty user before '@'")
		}
	}

	host, portStr, err := splitHostPort(rest)
	if err != nil {
		return sshutil.Target{}, invalidTarget(hostSpec, err.Error())
	}
	if host == "" {
		return sshutil.Target{}, invalidTarget(hostSpec, "empty host")
	}
	if strings.ContainsAny(host, " \t/") {
		return sshutil.Target{}, invalidTarget(hostSpec, "host contains whitespace or '/'")
	}
	t.Host = host

	switch {
	case portStr != "":
		p, err := parsePort(portStr)
		if err != nil {
			return sshutil.Target{}, invalidTarget(hostSpec, err.Error())
		}
		t.Port = p
	case cfg.Port != 0:
		if cfg.Port < 0 || cfg.Port > 65535 {
			return sshutil.Target{}, errors.New(errors.ErrConfig,
				fmt.Sprintf("Port %d is out of range", cfg.Port),
				"Use a port between 1 and 65535")
		}
		t.Port = cfg.Port
	default:
		t.Port = sshutil.DefaultPort
	}

	if t.User == "" {
		t.User = defaultUser(cfg.User)
	}
	return t, nil
}

func defaultUser(configured string) string {
	if configured != "" {
		return configured
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "root"
}

// splitHostPort splits host[:port], [v6]:port or a bare v6 address.
func splitHostPort(s string) (host, port string, err error) {
	if strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]")
		if end < 0 {
			return "", "", fmt.Errorf("missing ']'")
		}
		host = s[1:end]
		tail := s[end+1:]
		switch {
		case tail == "":
			return host, "", nil
		case strings.HasPrefix(tail, ":"):
			if tail == ":" {
				return "", "", fmt.Errorf("empty port")
			}
			return host, tail[1:], nil
		default:
			return "", "", fmt.Errorf("unexpected %q after ']'", tail)
		}
	}

	switch strings.Count(s, ":") {
	case 0:
		return s, "", nil
	case 1:
		i := strings.IndexByte(s, ':')
		if i == len(s)-1 {
			return "", "", fmt.Errorf("empty port")
		}
		return s[:i], s[i+1:], nil
	default:
		// Unbracketed IPv6 literal; no port.
		return s, "", nil
	}
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("port %q is not a number", s)
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("port %d is out of range", p)
	}
	return p, nil
}

func invalidTarget(spec, reason string) error {
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Invalid host '%s': %s", spec, reason),
		"Use [user@]host[:port], with IPv6 addresses in brackets: [::1]:22")
}
