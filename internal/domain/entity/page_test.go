package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		in   PageRequest
		want PageRequest
	}{
		{PageRequest{}, PageRequest{Page: 1, Limit: DefaultPageSize}},
		{PageRequest{Page: -3, Limit: 5}, PageRequest{Page: 1, Limit: 5}},
		{PageRequest{Page: 4, Limit: 1000}, PageRequest{Page: 4, Limit: MaxPageSize}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Normalize())
	}
	assert.Equal(t, 20, PageRequest{Page: 3, Limit: 10}.Offset())
}

func TestNewPageMeta(t *testing.T) {
	meta := NewPageMeta(PageRequest{Page: 1, Limit: 2}, 3)
	assert.Equal(t, 2, meta.TotalPages)
	assert.True(t, meta.HasNext)

	meta = NewPageMeta(PageRequest{Page: 2, Limit: 2}, 3)
	assert.False(t, meta.HasNext)

	meta = NewPageMeta(PageRequest{}, 0)
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNext)
}
