package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContainerRegisterAndGet(t *testing.T) {
	r := require.New(t)
	c := NewContainer()

	r.False(c.Has("db"))
	r.NoError(c.Register("db", "a service"))
	r.True(c.Has("db"))

	svc, err := c.Get("db")
	r.NoError(err)
	r.Equal("a service", svc)

	r.Error(c.Register("db", "duplicate"))
}

func TestContainerGetUnknown(t *testing.T) {
	c := NewContainer()
	_, err := c.Get("missing")
	require.ErrorIs(t, err, ErrServiceNotFound)
}

func TestMustRegisterPanics(t *testing.T) {
	c := NewContainer()
	c.MustRegister("once", 1)
	require.Panics(t, func() {
		c.MustRegister("once", 2)
	})
}
