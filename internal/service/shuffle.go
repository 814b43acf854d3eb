package service

import "math/rand"

// ShuffleOrder returns a permutation of [0, n) drawn from rng using a
// Fisher-Yates walk. The caller owns rng and any locking around it.
func ShuffleOrder(n int, rng *rand.Rand) []int {
	order := identityOrder(n)
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
