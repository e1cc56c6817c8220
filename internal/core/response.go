package core

// Status is the outcome code carried by every Response.
type Status int

// Status codes follow HTTP semantics.
const (
	StatusOK           Status = 200
	StatusCreated      Status = 201
	StatusInvalidInput Status = 400
	StatusInternal     Status = 500
)

// Response is the envelope returned by every business operation.
type Response struct {
	Message string `json:"message"`
	Status  Status `json:"status"`
	Payload any    `json:"payload,omitempty"`
}

// IsSuccess reports a status below 400.
func (r Response) IsSuccess() bool { return r.Status < 400 }

// IsInvalidInput reports a 4xx status.
func (r Response) IsInvalidInput() bool { return r.Status >= 400 && r.Status < 500 }

// IsInternal reports a 5xx status.
func (r Response) IsInternal() bool { return r.Status >= 500 }
