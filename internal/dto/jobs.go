package dto

// MyJob is the job dispatched by GET /job.
type MyJob struct {
	N int `json:"n" validate:"gte=0"`
}

func (MyJob) Kind() string { return "my_job" }

// EchoJob logs its number and succeeds. Useful for smoke-testing a worker.
type EchoJob struct {
	N int `json:"n"`
}

func (EchoJob) Kind() string { return "echo" }
