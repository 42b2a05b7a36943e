package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRef(t *testing.T) {
	r := Ref{File: 3, Offset: 1024, Length: 512}
	assert.Equal(t, "Ref(3:1024+512)", r.String())
	assert.Equal(t, int64(1536), r.End())
	assert.False(t, r.IsZero())
	assert.True(t, Ref{}.IsZero())
}
