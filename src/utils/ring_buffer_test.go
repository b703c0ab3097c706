package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBufferAppendWrapsAround(t *testing.T) {
	assertion := assert.New(t)

	buffer := NewRingBuffer[int](5)
	for i := 0; i < 12; i++ {
		buffer.Append(i)
	}

	assertion.Equal(5, buffer.Size())
	assertion.Equal(5, buffer.Capacity())
	assertion.True(buffer.IsFull())
	assertion.Equal([]int{7, 8, 9, 10, 11}, buffer.ToSlice())
}

func TestRingBufferBelowCapacity(t *testing.T) {
	assertion := assert.New(t)

	buffer := NewRingBuffer[float64](10)
	assertion.True(buffer.IsEmpty())

	buffer.Append(1.00)
	buffer.Append(2.00)
	buffer.Append(3.00)

	assertion.Equal(3, buffer.Size())
	assertion.False(buffer.IsFull())
	assertion.Equal([]float64{1.00, 2.00, 3.00}, buffer.ToSlice())
}

func TestRingBufferLastAndFirst(t *testing.T) {
	assertion := assert.New(t)

	buffer := NewRingBuffer[int](4)
	for i := 1; i <= 6; i++ {
		buffer.Append(i)
	}

	// holds 3, 4, 5, 6
	assertion.Equal([]int{6, 5}, buffer.Last(2))
	assertion.Equal([]int{3, 4}, buffer.First(2))
	assertion.Equal([]int{6, 5, 4, 3}, buffer.Last(100))
}

func TestRingBufferAt(t *testing.T) {
	assertion := assert.New(t)

	buffer := NewRingBuffer[int](3)
	buffer.Append(10)
	buffer.Append(20)
	buffer.Append(30)
	buffer.Append(40)

	oldest, ok := buffer.At(0)
	assertion.True(ok)
	assertion.Equal(20, oldest)

	newest, ok := buffer.At(2)
	assertion.True(ok)
	assertion.Equal(40, newest)

	_, ok = buffer.At(3)
	assertion.False(ok)
	_, ok = buffer.At(-1)
	assertion.False(ok)
}

func TestRingBufferSummaries(t *testing.T) {
	assertion := assert.New(t)

	buffer := NewRingBuffer[float64](3)
	assertion.Equal(0.00, RingMean(buffer))
	assertion.Equal(0.00, RingMin(buffer))
	assertion.Equal(0.00, RingMax(buffer))

	buffer.Append(2.00)
	buffer.Append(4.00)
	buffer.Append(6.00)
	buffer.Append(8.00)

	assertion.InDelta(6.00, RingMean(buffer), 1e-9)
	assertion.Equal(4.00, RingMin(buffer))
	assertion.Equal(8.00, RingMax(buffer))
}

func TestRingBufferEachVisitsInOrder(t *testing.T) {
	assertion := assert.New(t)

	buffer := NewRingBuffer[int](3)
	for i := 0; i < 5; i++ {
		buffer.Append(i)
	}

	visited := make([]int, 0)
	buffer.Each(func(value int) {
		visited = append(visited, value)
	})

	assertion.Equal([]int{2, 3, 4}, visited)
}
