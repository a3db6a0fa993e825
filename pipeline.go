package hedra

import "sync"

// task runs fn over data split into one contiguous chunk per worker.
func task[T any](workersCount int, data []T, fn func(index int, data T)) {
	if len(data) == 0 {
		return
	}
	workersCount = min(max(1, workersCount), len(data))

	var wg sync.WaitGroup
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i, data[i])
			}
		}(workerID*chunkSize, min((workerID+1)*chunkSize, dataSize))
	}
	wg.Wait()
}
