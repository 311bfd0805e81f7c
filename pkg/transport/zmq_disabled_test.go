//go:build !zmq

package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZMQRequiresBuildTag(t *testing.T) {
	_, err := NewSocketFactory(KindZMQ)
	assert.ErrorIs(t, err, ErrZMQUnavailable)
}
