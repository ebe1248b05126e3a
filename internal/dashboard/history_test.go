package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory_PushAndValues(t *testing.T) {
	h := NewHistory(3)
	assert.Nil(t, h.Values())

	h.Push(1)
	h.Push(2)
	assert.Equal(t, []float64{1, 2}, h.Values())
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 3, h.Cap())

	h.Push(3)
	h.Push(4)
	assert.Equal(t, []float64{2, 3, 4}, h.Values())
	assert.Equal(t, 3, h.Len())
}

func TestHistory_Last(t *testing.T) {
	h := NewHistory(5)
	for _, v := range []float64{10, 20, 30, 40, 50, 60} {
		h.Push(v)
	}

	tests := []struct {
		name  string
		count int
		want  []float64
	}{
		{"zero", 0, nil},
		{"negative", -1, nil},
		{"two", 2, []float64{50, 60}},
		{"all", 5, []float64{20, 30, 40, 50, 60}},
		{"more than stored", 10, []float64{20, 30, 40, 50, 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Last(tt.count))
		})
	}
}

func TestHistory_Latest(t *testing.T) {
	h := NewHistory(2)
	_, ok := h.Latest()
	assert.False(t, ok)

	h.Push(1)
	h.Push(2)
	h.Push(3)
	v, ok := h.Latest()
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestHistory_ValuesIsCopy(t *testing.T) {
	h := NewHistory(3)
	h.Push(1)
	vals := h.Values()
	vals[0] = 99
	assert.Equal(t, []float64{1}, h.Values())
}

func TestHistory_Reset(t *testing.T) {
	h := NewHistory(3)
	h.Push(1)
	h.Push(2)
	h.Reset()
	assert.Equal(t, 0, h.Len())
	assert.Nil(t, h.Values())
}

func TestNewHistory_DefaultSize(t *testing.T) {
	assert.Equal(t, DefaultHistorySize, NewHistory(0).Cap())
	assert.Equal(t, DefaultHistorySize, NewHistory(-4).Cap())
}
