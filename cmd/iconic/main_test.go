package main

import (
	"flag"
	"testing"

	"github.com/esimov/iconic/imop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_FlagsOverrideConfig(t *testing.T) {
	require.NoError(t, flag.Set("scale", "0.5"))
	require.NoError(t, flag.Set("blend", "dst_over"))

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Canvas.FitScale)
	assert.Equal(t, imop.DstOver, cfg.Processor().Canvas.Blend)
}

func TestCLI_ShouldValidateFlags(t *testing.T) {
	testCases := []struct {
		name, value string
	}{
		{name: "scale", value: "0"},
		{name: "scale", value: "1.5"},
		{name: "bg", value: "white"},
	}
	for _, tc := range testCases {
		t.Run(tc.name+"="+tc.value, func(t *testing.T) {
			prev := flag.Lookup(tc.name).Value.String()
			t.Cleanup(func() { flag.Set(tc.name, prev) })

			require.NoError(t, flag.Set(tc.name, tc.value))
			_, err := loadConfig("")
			assert.Error(t, err)
		})
	}
}
