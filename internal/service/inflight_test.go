package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInflightSet(t *testing.T) {
	f := newInflightSet()

	assert.True(t, f.claim("s-1", opSearch))
	assert.False(t, f.claim("s-1", opSearch))
	assert.True(t, f.claim("s-1", opRecommend), "operations are tracked separately")
	assert.True(t, f.claim("s-2", opSearch), "sessions are tracked separately")

	f.release("s-1", opSearch)
	assert.True(t, f.claim("s-1", opSearch))
}
