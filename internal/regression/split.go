package regression

import (
	"fmt"
	"math"
	"math/rand"

	"featuredrop/pkg/errors"
)

// TrainTestSplit partitions row indices [0,n) into a training and a held-out
// set. The held-out set has ceil(testSize*n) rows. The permutation is drawn
// from a PRNG seeded with seed, so equal inputs always give equal splits.
func TrainTestSplit(n int, testSize float64, seed int64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("test size must be in (0,1), got %v", testSize))
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain == 0 {
		return nil, nil, errors.New(errors.ErrCodeInsufficientData,
			fmt.Sprintf("with n_samples=%d and test_size=%v the resulting train set would be empty", n, testSize)).
			WithContext("rows", n).
			WithSuggestions("Provide at least two rows with both the feature and the target populated")
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}
