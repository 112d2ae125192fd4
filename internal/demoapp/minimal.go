package demoapp

import (
	"net/http"

	"github.com/vitalvas/automd/endpoint"
	"github.com/vitalvas/automd/responses"
)

type minimalArgs struct {
	Text *string `json:"text"`
}

// MinimalStatus returns the /minimal_status resource. Only GET is
// documented, with parameters inferred from its argument struct.
func MinimalStatus() endpoint.Resource {
	return endpoint.Resource{
		http.MethodGet:  endpoint.DescribeFunc(echoText, endpoint.Meta{Signature: minimalArgs{}}),
		http.MethodPost: http.HandlerFunc(echoText),
		http.MethodPut:  http.HandlerFunc(secretText),
	}
}

func echoText(w http.ResponseWriter, r *http.Request) {
	_ = responses.Text(r.URL.Query().Get("text")).Render(w, http.StatusOK)
}

func secretText(w http.ResponseWriter, r *http.Request) {
	_ = responses.Text("Secret OK: "+r.URL.Query().Get("text")).Render(w, http.StatusOK)
}
