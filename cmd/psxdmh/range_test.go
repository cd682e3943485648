package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name  string
		spec  string
		limit uint16
		want  []uint16
		fails bool
	}{
		{name: "single", spec: "7", limit: 10, want: []uint16{7}},
		{name: "list", spec: "1,3,5", limit: 10, want: []uint16{1, 3, 5}},
		{name: "range", spec: "2-5", limit: 10, want: []uint16{2, 3, 4, 5}},
		{name: "mixed", spec: "0,2-4,9", limit: 10, want: []uint16{0, 2, 3, 4, 9}},
		{name: "out of bounds", spec: "10", limit: 10, fails: true},
		{name: "reversed", spec: "5-2", limit: 10, fails: true},
		{name: "empty", spec: "", limit: 10, fails: true},
		{name: "garbage", spec: "x", limit: 10, fails: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := parseRange(test.spec, test.limit, "item")
			if test.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestCommandDispatch(t *testing.T) {
	assert.Equal(t, 1, run([]string{"psxdmh"}))
	assert.Equal(t, 1, run([]string{"psxdmh", "bogus"}))
	assert.Equal(t, 0, run([]string{"psxdmh", "version"}))
}
