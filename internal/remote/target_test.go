package remote

import (
	"testing"

	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/pkg/sshutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	t.Setenv("USER", "envuser")

	tests := []struct {
		name string
		spec string
		cfg  Config
		want sshutil.Target
	}{
		{"bare host", "web", Config{}, sshutil.Target{Host: "web", Port: 22, User: "envuser"}},
		{"user at host", "deploy@web", Config{}, sshutil.Target{Host: "web", Port: 22, User: "deploy"}},
		{"host port", "web:2222", Config{}, sshutil.Target{Host: "web", Port: 2222, User: "envuser"}},
		{"full", "deploy@10.0.0.5:2200", Config{}, sshutil.Target{Host: "10.0.0.5", Port: 2200, User: "deploy"}},
		{"config fills gaps", "web", Config{User: "cfg", Port: 2022}, sshutil.Target{Host: "web", Port: 2022, User: "cfg"}},
		{"spec beats config", "me@web:23", Config{User: "cfg", Port: 2022}, sshutil.Target{Host: "web", Port: 23, User: "me"}},
		{"bracketed v6 with port", "root@[::1]:2222", Config{}, sshutil.Target{Host: "::1", Port: 2222, User: "root"}},
		{"bracketed v6", "[fe80::1]", Config{}, sshutil.Target{Host: "fe80::1", Port: 22, User: "envuser"}},
		{"bare v6", "fe80::1", Config{}, sshutil.Target{Host: "fe80::1", Port: 22, User: "envuser"}},
		{"trimmed", "  web  ", Config{}, sshutil.Target{Host: "web", Port: 22, User: "envuser"}},
		{"at in user", "a@b@web", Config{}, sshutil.Target{Host: "web", Port: 22, User: "a@b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.spec, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTarget_UserFallback(t *testing.T) {
	t.Setenv("USER", "")
	got, err := ParseTarget("web", Config{})
	require.NoError(t, err)
	assert.Equal(t, "root", got.User)
}

func TestParseTarget_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec string
		cfg  Config
	}{
		{"empty", "", Config{}},
		{"blank", "   ", Config{}},
		{"empty user", "@web", Config{}},
		{"empty host", "me@", Config{}},
		{"port only", ":22", Config{}},
		{"empty port", "web:", Config{}},
		{"port not a number", "web:ssh", Config{}},
		{"port zero", "web:0", Config{}},
		{"port too big", "web:70000", Config{}},
		{"config port out of range", "web", Config{Port: 70000}},
		{"unclosed bracket", "[::1", Config{}},
		{"junk after bracket", "[::1]x", Config{}},
		{"space in host", "my host", Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTarget(tt.spec, tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}
