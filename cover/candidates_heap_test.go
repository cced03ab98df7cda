package cover

import (
	"reflect"
	"testing"
)

func TestCandidatesHeap(t *testing.T) {
	h := newCandidatesHeap(candidatesByBound)
	bounds := []int{2, 5, 5, 1, 3, 5}
	for i, b := range bounds {
		h.CandidatePush(&candidate{index: i, bound: b})
	}

	order := []int{}
	for _, c := range h.Slice() {
		order = append(order, c.index)
	}
	if expected, actual := []int{1, 2, 5, 4, 0, 3}, order; !reflect.DeepEqual(actual, expected) {
		t.Fatalf("Expected Slice() order=%v but actual=%v", expected, actual)
	}

	// Slice leaves the heap intact.
	if expected, actual := len(bounds), h.Len(); actual != expected {
		t.Errorf("Expected heap len=%v after Slice() but actual=%v", expected, actual)
	}
	if expected, actual := 1, h.CandidatePop().index; actual != expected {
		t.Errorf("Expected first pop index=%v but actual=%v", expected, actual)
	}
}

func TestCandidatesHeapEmptyPop(t *testing.T) {
	h := newCandidatesHeap(candidatesByBound)
	if c := h.CandidatePop(); c != nil {
		t.Errorf("Expected nil from empty heap but actual=%+v", c)
	}
}
