package yolo

import (
	"reflect"
	"testing"
)

func TestAssignSplits(t *testing.T) {
	tests := []struct {
		name      string
		ids       []string
		ratio     float64
		wantTrain int
		wantVal   int
	}{
		{"Duplicate mode", []string{"a", "b", "c"}, 0, 3, 3},
		{"Single image is duplicated", []string{"a"}, 0.5, 1, 1},
		{"Quarter held out", []string{"a", "b", "c", "d"}, 0.25, 3, 1},
		{"Tiny ratio still holds one out", []string{"a", "b", "c"}, 0.01, 2, 1},
		{"Full ratio keeps one for training", []string{"a", "b", "c"}, 1, 1, 2},
		{"Empty", nil, 0.2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assigned := AssignSplits(tt.ids, tt.ratio, 1)

			var train, val int
			for _, splits := range assigned {
				for _, s := range splits {
					if s == SplitTrain {
						train++
					} else {
						val++
					}
				}
			}

			if train != tt.wantTrain || val != tt.wantVal {
				t.Errorf("expected %d/%d, got %d/%d", tt.wantTrain, tt.wantVal, train, val)
			}
		})
	}
}

func TestAssignSplitsIsDeterministic(t *testing.T) {
	ids := []string{"e", "a", "d", "c", "b", "f"}
	reordered := []string{"a", "b", "c", "d", "e", "f"}

	first := AssignSplits(ids, 0.5, 99)
	second := AssignSplits(reordered, 0.5, 99)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected same assignment regardless of input order, got %v and %v", first, second)
	}
}
