package constants

// JobStatus is the lifecycle status of a batch extraction job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "QUEUED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED" // extraction returned a record
	JobStatusFailed    JobStatus = "FAILED"    // fatal input/country error
)
