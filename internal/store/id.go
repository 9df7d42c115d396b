package store

// NextNumber returns the next free issue number given the numbers
// already in use. Only confirmed positive numbers count; pending
// records (number zero) never influence the result.
func NextNumber(existing []int) int {
	highest := 0
	for _, n := range existing {
		if n > highest {
			highest = n
		}
	}
	return highest + 1
}
