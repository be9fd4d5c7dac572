package api

// Envelope status values.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Envelope titles.
const (
	titleTag  = "Tag"
	titleL11n = "Localization"
)

// Envelope is the response wrapper of every tag operation except search.
type Envelope[T any] struct {
	Status   string `json:"status" enum:"OK,ERROR" doc:"Outcome of the operation"`
	Title    string `json:"title" doc:"Entity the operation acted on"`
	Message  string `json:"message" doc:"Human-readable outcome"`
	Response T      `json:"response" doc:"Operation payload"`
}

func ok[T any](title, message string, response T) Envelope[T] {
	return Envelope[T]{
		Status:   StatusOK,
		Title:    title,
		Message:  message,
		Response: response,
	}
}
