package matching

const (
	relaxedBaseScore = 50
	relaxationStep   = 10
)

// MinScore returns the acceptance floor for a refresh, given the refresh count after
// the increment: max(0, 50 - 10*n). The first refresh (n=1) asks for 40, then 30, 20,
// 10 and 0 from the fifth refresh on. Negative counts are treated as 0.
//
// Every refresh lowers the floor, so "new recommendations" are in fact lower scored
// ones. This is the product behavior and is kept on purpose.
func MinScore(refreshCount int) int {
	if refreshCount <= 0 {
		return relaxedBaseScore
	}

	// compare before multiplying so huge counts cannot overflow
	if refreshCount >= relaxedBaseScore/relaxationStep {
		return 0
	}

	return relaxedBaseScore - relaxationStep*refreshCount
}
