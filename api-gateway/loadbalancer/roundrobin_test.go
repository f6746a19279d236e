package loadbalancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundRobinNext(t *testing.T) {
	rr := NewRoundRobin([]string{"http://a:8080", "http://b:8080"})

	assert.Equal(t, "http://a:8080", rr.Next())
	assert.Equal(t, "http://b:8080", rr.Next())
	assert.Equal(t, "http://a:8080", rr.Next())
}

func TestRoundRobinSingleInstance(t *testing.T) {
	rr := NewRoundRobin([]string{"http://only:8080"})

	assert.Equal(t, "http://only:8080", rr.Next())
	assert.Equal(t, "http://only:8080", rr.Next())
}

func TestRoundRobinAddRemove(t *testing.T) {
	rr := NewRoundRobin([]string{"http://a:8080"})
	rr.AddServer("http://b:8080")
	assert.Len(t, rr.GetServers(), 2)

	rr.RemoveServer("http://a:8080")
	assert.Equal(t, []string{"http://b:8080"}, rr.GetServers())
	assert.Equal(t, "http://b:8080", rr.Next())
}
