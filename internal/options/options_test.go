package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type config struct {
	size  int
	label string
}

func TestApply(t *testing.T) {
	cfg := &config{}

	err := Apply(cfg,
		New(func(c *config) error {
			c.size = 10
			return nil
		}),
		NoError(func(c *config) {
			c.label = "x"
		}),
	)
	require.NoError(t, err)
	require.Equal(t, 10, cfg.size)
	require.Equal(t, "x", cfg.label)
}

func TestApply_StopsOnFirstError(t *testing.T) {
	cfg := &config{}
	boom := errors.New("bad option")

	err := Apply(cfg,
		New(func(c *config) error {
			c.size = 1
			return nil
		}),
		New(func(*config) error { return boom }),
		NoError(func(c *config) { c.size = 99 }),
	)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, cfg.size)
}
