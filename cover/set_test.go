package cover

import (
	"reflect"
	"testing"
)

func TestSet(t *testing.T) {
	s := NewSet("b", "a", "b")
	if expected, actual := 2, s.Len(); actual != expected {
		t.Errorf("Expected len=%v but actual=%v", expected, actual)
	}

	c := s.Clone()
	c.Add("c")
	c.Remove("a")
	if s.Contains("c") || !s.Contains("a") {
		t.Errorf("Expected clone to be independent of the original, original=%v", s.Slice())
	}
	if expected, actual := []string{"b", "c"}, c.Slice(); !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected clone members=%v but actual=%v", expected, actual)
	}

	if s.Equal(c) {
		t.Errorf("Expected %v != %v", s.Slice(), c.Slice())
	}
	if !s.Equal(NewSet("a", "b")) {
		t.Errorf("Expected %v == [a b]", s.Slice())
	}
	if !NewSet().Equal(Set{}) {
		t.Errorf("Expected empty sets to be equal")
	}
	if expected, actual := []string{}, NewSet().Slice(); !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected empty slice but actual=%v", actual)
	}
}
