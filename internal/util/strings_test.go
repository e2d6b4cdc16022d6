package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralize(t *testing.T) {
	assert.Equal(t, "host", Pluralize(1, "host", "hosts"))
	assert.Equal(t, "hosts", Pluralize(0, "host", "hosts"))
	assert.Equal(t, "hosts", Pluralize(2, "host", "hosts"))
}

func TestCountNoun(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "0 hosts"},
		{1, "1 host"},
		{12, "12 hosts"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CountNoun(tt.count, "host", "hosts"))
	}
}
