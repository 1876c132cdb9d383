package jobs

// MinWorkers is the smallest pool the orchestrator will run.
const MinWorkers = 1

// WorkerCount sizes the pool for a host with cpus logical cores, leaving one
// core for the system.
func WorkerCount(cpus int) int {
	return max(MinWorkers, cpus-1)
}

// EncoderThreads is the ffmpeg -threads value: half the cores, at least one.
func EncoderThreads(cpus int) int {
	return max(1, cpus/2)
}

// ClampWorkerCount ensures the worker count is at least MinWorkers and no
// larger than the number of assets.
func ClampWorkerCount(n, assets int) int {
	if assets > 0 && n > assets {
		n = assets
	}
	if n < MinWorkers {
		return MinWorkers
	}
	return n
}
