package yolo

import (
	"math"
	"math/rand/v2"
	"sort"
)

type Split string

const (
	SplitTrain Split = "train"
	SplitVal   Split = "val"
)

var allSplits = []Split{SplitTrain, SplitVal}

// AssignSplits decides which split(s) every image id goes to.
//
// With a ratio <= 0 every image is placed in both train and val, so the
// validation metric only confirms that the model learned the given examples.
// With a positive ratio the ids are shuffled with a PCG source seeded by seed
// and the first round(n*ratio) go to val. Train and val always get at least one
// image each; a single image is placed in both.
func AssignSplits(ids []string, valRatio float64, seed uint64) map[string][]Split {
	assigned := make(map[string][]Split, len(ids))

	if valRatio <= 0 || len(ids) < 2 {
		for _, id := range ids {
			assigned[id] = allSplits
		}
		return assigned
	}

	shuffled := append([]string(nil), ids...)
	sort.Strings(shuffled)
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	valCount := int(math.Round(float64(len(shuffled)) * min(valRatio, 1)))
	valCount = max(valCount, 1)
	valCount = min(valCount, len(shuffled)-1)

	for i, id := range shuffled {
		if i < valCount {
			assigned[id] = []Split{SplitVal}
		} else {
			assigned[id] = []Split{SplitTrain}
		}
	}

	return assigned
}
